package models

import (
	"time"

	"github.com/storefront/backend/internal/domain/identity"
)

// AccountModel is the persistence model for customer accounts
type AccountModel struct {
	BaseModel
	Email        string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255;not null"`
	DisplayName  string `gorm:"size:255"`
	Status       string `gorm:"size:32;not null;default:'active'"`
	LastLoginAt  *time.Time
}

// TableName specifies the table name for AccountModel
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts AccountModel to domain Account
func (m *AccountModel) ToDomain() *identity.Account {
	return &identity.Account{
		BaseEntity:   m.BaseModel.ToDomain(),
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		DisplayName:  m.DisplayName,
		Status:       identity.AccountStatus(m.Status),
		LastLoginAt:  m.LastLoginAt,
	}
}

// AccountModelFromDomain converts domain Account to AccountModel
func AccountModelFromDomain(a *identity.Account) *AccountModel {
	model := &AccountModel{
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		DisplayName:  a.DisplayName,
		Status:       string(a.Status),
		LastLoginAt:  a.LastLoginAt,
	}
	model.FromDomainBaseEntity(a.BaseEntity)
	return model
}
