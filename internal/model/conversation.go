package model

import "time"

// Conversation is one inbound/outbound exchange in the audit trail.
// Rows are append-only; only the Read flag is ever mutated.
type Conversation struct {
	ID          int64     `json:"id"`
	TenantID    int64     `json:"tenant_id"`
	Contact     string    `json:"contact"`
	UserMessage string    `json:"user_message"`
	BotReply    string    `json:"bot_reply"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Conversation) TableName() string { return "conversations" }

// ContactSummary is one row of the dashboard thread list.
type ContactSummary struct {
	Contact          string    `json:"contact"`
	TotalMessages    int64     `json:"total_messages"`
	LastMessageAt    time.Time `json:"last_message_at"`
	Unread           int64     `json:"unread"`
	AttendanceStatus string    `json:"attendance_status,omitempty"`
}
