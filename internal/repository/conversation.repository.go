package repository

import (
	"context"
	"time"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/pkg/pg"
)

type ConversationRepository struct {
	*pg.DB
}

func NewConversationRepository(db *pg.DB) *ConversationRepository {
	return &ConversationRepository{
		db,
	}
}

func (r *ConversationRepository) Append(ctx context.Context, c *model.Conversation) (*model.Conversation, error) {
	entity := toConversationEntity(c)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toConversationModel(entity), nil
}

func (r *ConversationRepository) History(ctx context.Context, tenantID int64, contact string) ([]*model.Conversation, error) {
	var entities []*ConversationEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("tenant_id = ? AND contact = ?", tenantID, contact).
		Order("created_at ASC, id ASC").
		Find(&entities).
		Error
	if err != nil {
		return nil, err
	}
	return toConversationModels(entities), nil
}

func (r *ConversationRepository) MarkRead(ctx context.Context, tenantID int64, contact string) error {
	return r.Write(ctx).WithContext(ctx).
		Model(&ConversationEntity{}).
		Where("tenant_id = ? AND contact = ? AND read = ?", tenantID, contact, false).
		Update("read", true).
		Error
}

// ContactSummaries returns one row per contact for the dashboard thread
// list, with the open order's attendance status joined in when present.
func (r *ConversationRepository) ContactSummaries(ctx context.Context, tenantID int64) ([]*model.ContactSummary, error) {
	var rows []struct {
		Contact          string  `gorm:"column:contact"`
		TotalMessages    int64   `gorm:"column:total_messages"`
		LastMessageAt    string  `gorm:"column:last_message_at"`
		Unread           int64   `gorm:"column:unread"`
		AttendanceStatus *string `gorm:"column:attendance_status"`
	}

	err := r.Read(ctx).WithContext(ctx).
		Table("conversations AS c").
		Select(`
			c.contact                                            AS contact,
			COUNT(c.id)                                          AS total_messages,
			CAST(MAX(c.created_at) AS TEXT)                      AS last_message_at,
			SUM(CASE WHEN c.read = ? THEN 1 ELSE 0 END)          AS unread,
			MAX(o.attendance_status)                             AS attendance_status`, false).
		Joins("LEFT JOIN orders o ON o.customer = c.contact AND o.status = ? AND o.tenant_id = ?", string(model.OrderStatusOpen), tenantID).
		Where("c.tenant_id = ?", tenantID).
		Group("c.contact").
		Order("last_message_at DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	summaries := make([]*model.ContactSummary, 0, len(rows))
	for _, row := range rows {
		s := &model.ContactSummary{
			Contact:       row.Contact,
			TotalMessages: row.TotalMessages,
			Unread:        row.Unread,
		}
		if t, err := parseDBTime(row.LastMessageAt); err == nil {
			s.LastMessageAt = t
		}
		if row.AttendanceStatus != nil {
			s.AttendanceStatus = *row.AttendanceStatus
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// parseDBTime parses timestamp text as produced by the postgres and sqlite
// drivers. Aggregates are cast to text in SQL so both drivers hand back the
// same scan type.
func parseDBTime(s string) (time.Time, error) {
	layouts := []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999-07",
		"2006-01-02 15:04:05.999999999",
		time.RFC3339Nano,
	}
	var err error
	var t time.Time
	for _, layout := range layouts {
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
