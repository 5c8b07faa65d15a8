package repository

import (
	"time"

	"github.com/zapshop/commerce-bot/internal/model"
)

type TenantEntity struct {
	ID              int64     `db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	Name            string    `db:"name"             gorm:"column:name;not null"`
	Plan            string    `db:"plan"             gorm:"column:plan;not null;default:free"`
	CreditBalance   uint      `db:"credit_balance"   gorm:"column:credit_balance;not null;default:0"`
	WhatsAppNumber  string    `db:"whatsapp_number"  gorm:"column:whatsapp_number;not null;uniqueIndex"`
	SubaccountSID   string    `db:"subaccount_sid"   gorm:"column:subaccount_sid"`
	SubaccountToken string    `db:"subaccount_token" gorm:"column:subaccount_token"`
	OperatorNumber  string    `db:"operator_number"  gorm:"column:operator_number"`
	CreatedAt       time.Time `db:"created_at"       gorm:"column:created_at;autoCreateTime"`
}

func (TenantEntity) TableName() string {
	return "tenants"
}

func toTenantEntity(m *model.Tenant) *TenantEntity {
	if m == nil {
		return nil
	}
	return &TenantEntity{
		ID:              m.ID,
		Name:            m.Name,
		Plan:            m.Plan,
		CreditBalance:   m.CreditBalance,
		WhatsAppNumber:  m.WhatsAppNumber,
		SubaccountSID:   m.SubaccountSID,
		SubaccountToken: m.SubaccountToken,
		OperatorNumber:  m.OperatorNumber,
		CreatedAt:       m.CreatedAt,
	}
}

func toTenantModel(e *TenantEntity) *model.Tenant {
	if e == nil {
		return nil
	}
	return &model.Tenant{
		ID:              e.ID,
		Name:            e.Name,
		Plan:            e.Plan,
		CreditBalance:   e.CreditBalance,
		WhatsAppNumber:  e.WhatsAppNumber,
		SubaccountSID:   e.SubaccountSID,
		SubaccountToken: e.SubaccountToken,
		OperatorNumber:  e.OperatorNumber,
		CreatedAt:       e.CreatedAt,
	}
}
