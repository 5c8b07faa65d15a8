package repository

import (
	"encoding/json"
	"time"

	"github.com/zapshop/commerce-bot/internal/model"
	"github.com/zapshop/commerce-bot/pkg/logger"
)

type BotConfigEntity struct {
	TenantID      int64     `db:"tenant_id"      gorm:"column:tenant_id;primaryKey;autoIncrement:false"`
	StoreName     string    `db:"store_name"     gorm:"column:store_name"`
	Hours         string    `db:"hours"          gorm:"column:hours"`
	Address       string    `db:"address"        gorm:"column:address"`
	MapsLink      string    `db:"maps_link"      gorm:"column:maps_link"`
	AssistantName string    `db:"assistant_name" gorm:"column:assistant_name"`
	Greeting      string    `db:"greeting"       gorm:"column:greeting"`
	UseEmojis     bool      `db:"use_emojis"     gorm:"column:use_emojis;not null"`
	FAQ           string    `db:"faq"            gorm:"column:faq"` // JSON array of {question, answer}
	PersonaPrompt string    `db:"persona_prompt" gorm:"column:persona_prompt"`
	Knowledge     string    `db:"knowledge"      gorm:"column:knowledge"`
	UpdatedAt     time.Time `db:"updated_at"     gorm:"column:updated_at;autoUpdateTime"`
}

func (BotConfigEntity) TableName() string {
	return "bot_configs"
}

func toBotConfigEntity(m *model.BotConfig) *BotConfigEntity {
	if m == nil {
		return nil
	}
	faq := "[]"
	if m.FAQ != nil {
		if b, err := json.Marshal(m.FAQ); err == nil {
			faq = string(b)
		}
	}
	return &BotConfigEntity{
		TenantID:      m.TenantID,
		StoreName:     m.StoreName,
		Hours:         m.Hours,
		Address:       m.Address,
		MapsLink:      m.MapsLink,
		AssistantName: m.AssistantName,
		Greeting:      m.Greeting,
		UseEmojis:     m.UseEmojis,
		FAQ:           faq,
		PersonaPrompt: m.PersonaPrompt,
		Knowledge:     m.Knowledge,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toBotConfigModel(e *BotConfigEntity) *model.BotConfig {
	if e == nil {
		return nil
	}
	var faq []model.FAQEntry
	if e.FAQ != "" {
		if err := json.Unmarshal([]byte(e.FAQ), &faq); err != nil {
			// A broken FAQ blob must not take the bot path down.
			logger.Warn("bot config: discarding unparsable faq", "tenant_id", e.TenantID, "error", err)
			faq = nil
		}
	}
	if faq == nil {
		faq = []model.FAQEntry{}
	}
	return &model.BotConfig{
		TenantID:      e.TenantID,
		StoreName:     e.StoreName,
		Hours:         e.Hours,
		Address:       e.Address,
		MapsLink:      e.MapsLink,
		AssistantName: e.AssistantName,
		Greeting:      e.Greeting,
		UseEmojis:     e.UseEmojis,
		FAQ:           faq,
		PersonaPrompt: e.PersonaPrompt,
		Knowledge:     e.Knowledge,
		UpdatedAt:     e.UpdatedAt,
	}
}
