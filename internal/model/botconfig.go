package model

import "time"

type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// BotConfig is the per-tenant personality of the bot. It is read on every
// inbound message, so the service layer keeps a short-lived cache in front
// of it.
type BotConfig struct {
	TenantID      int64      `json:"tenant_id"`
	StoreName     string     `json:"store_name"`
	Hours         string     `json:"hours"`
	Address       string     `json:"address"`
	MapsLink      string     `json:"maps_link"`
	AssistantName string     `json:"assistant_name"`
	Greeting      string     `json:"greeting"`
	UseEmojis     bool       `json:"use_emojis"`
	FAQ           []FAQEntry `json:"faq"`
	PersonaPrompt string     `json:"persona_prompt"`
	Knowledge     string     `json:"knowledge"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (BotConfig) TableName() string { return "bot_configs" }

// DefaultBotConfig is created at tenant registration so the bot path never
// has to deal with a missing config row.
func DefaultBotConfig(tenantID int64, storeName string) *BotConfig {
	return &BotConfig{
		TenantID:      tenantID,
		StoreName:     storeName,
		AssistantName: "Assistente",
		Greeting:      "Olá! Bem-vindo(a)!",
		UseEmojis:     true,
		FAQ:           []FAQEntry{},
	}
}
