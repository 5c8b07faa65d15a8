package model

import (
	"errors"
	"time"
)

// Tenant is one store using the platform. Every other entity is scoped by
// TenantID; a query on a tenant-owned table without that filter is a bug.
type Tenant struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Plan            string    `json:"plan"`
	CreditBalance   uint      `json:"credit_balance"`
	WhatsAppNumber  string    `json:"whatsapp_number"` // receiving number, e.g. "whatsapp:+14155238886"
	SubaccountSID   string    `json:"-"`
	SubaccountToken string    `json:"-"`
	OperatorNumber  string    `json:"operator_number"` // where escalation alerts go
	CreatedAt       time.Time `json:"created_at"`
}

func (Tenant) TableName() string { return "tenants" }

type TenantCreateRequest struct {
	Name           string
	Plan           string
	WhatsAppNumber string
	SubaccountSID  string
	SubaccountToken string
	OperatorNumber string
}

func (p TenantCreateRequest) Validate() error {
	if p.Name == "" {
		return errors.New("name is required")
	}
	if p.WhatsAppNumber == "" {
		return errors.New("whatsapp_number is required")
	}
	return nil
}
