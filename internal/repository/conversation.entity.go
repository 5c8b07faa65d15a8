package repository

import (
	"time"

	"github.com/zapshop/commerce-bot/internal/model"
)

type ConversationEntity struct {
	ID          int64     `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	TenantID    int64     `db:"tenant_id"    gorm:"column:tenant_id;not null;index"`
	Contact     string    `db:"contact"      gorm:"column:contact;not null;index"`
	UserMessage string    `db:"user_message" gorm:"column:user_message;not null"`
	BotReply    string    `db:"bot_reply"    gorm:"column:bot_reply;not null"`
	Read        bool      `db:"read"         gorm:"column:read;not null;default:false"`
	CreatedAt   time.Time `db:"created_at"   gorm:"column:created_at;autoCreateTime"`
}

func (ConversationEntity) TableName() string {
	return "conversations"
}

func toConversationEntity(m *model.Conversation) *ConversationEntity {
	if m == nil {
		return nil
	}
	return &ConversationEntity{
		ID:          m.ID,
		TenantID:    m.TenantID,
		Contact:     m.Contact,
		UserMessage: m.UserMessage,
		BotReply:    m.BotReply,
		Read:        m.Read,
		CreatedAt:   m.CreatedAt,
	}
}

func toConversationModel(e *ConversationEntity) *model.Conversation {
	if e == nil {
		return nil
	}
	return &model.Conversation{
		ID:          e.ID,
		TenantID:    e.TenantID,
		Contact:     e.Contact,
		UserMessage: e.UserMessage,
		BotReply:    e.BotReply,
		Read:        e.Read,
		CreatedAt:   e.CreatedAt,
	}
}

func toConversationModels(entities []*ConversationEntity) []*model.Conversation {
	if entities == nil {
		return nil
	}
	models := make([]*model.Conversation, len(entities))
	for i, e := range entities {
		models[i] = toConversationModel(e)
	}
	return models
}
