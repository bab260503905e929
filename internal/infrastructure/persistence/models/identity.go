package models

import (
	"time"

	"github.com/finledger/backend/internal/domain/identity"
	"github.com/finledger/backend/internal/domain/shared"
	"github.com/finledger/backend/internal/domain/shared/valueobject"
)

// CompanyModel is the persistence model for the Company aggregate
type CompanyModel struct {
	AggregateModel
	Name                  string                 `gorm:"type:varchar(200);not null"`
	Email                 string                 `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone                 string                 `gorm:"type:varchar(50)"`
	Address               string                 `gorm:"type:varchar(500)"`
	City                  string                 `gorm:"type:varchar(100)"`
	StateProvince         string                 `gorm:"type:varchar(100)"`
	PostalCode            string                 `gorm:"type:varchar(20)"`
	Country               string                 `gorm:"type:varchar(100)"`
	Website               string                 `gorm:"type:varchar(255)"`
	RegistrationNumber    string                 `gorm:"type:varchar(100)"`
	TaxID                 string                 `gorm:"type:varchar(100)"`
	FiscalYearStart       string                 `gorm:"type:varchar(5);not null;default:'01-01'"`
	DefaultCurrency       string                 `gorm:"type:varchar(3);not null;default:'CNY'"`
	Status                identity.CompanyStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	MaxUsers              *int
	SubscriptionExpiresAt *time.Time
	CreatedBy             int64
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the persistence model to a domain Company
func (m *CompanyModel) ToDomain() *identity.Company {
	return &identity.Company{
		BaseAggregateRoot:     m.ToDomainAggregateRoot(),
		Name:                  m.Name,
		Email:                 m.Email,
		Phone:                 m.Phone,
		Address:               m.Address,
		City:                  m.City,
		StateProvince:         m.StateProvince,
		PostalCode:            m.PostalCode,
		Country:               m.Country,
		Website:               m.Website,
		RegistrationNumber:    m.RegistrationNumber,
		TaxID:                 m.TaxID,
		FiscalYearStart:       m.FiscalYearStart,
		DefaultCurrency:       valueobject.Currency(m.DefaultCurrency),
		Status:                m.Status,
		MaxUsers:              m.MaxUsers,
		SubscriptionExpiresAt: m.SubscriptionExpiresAt,
		CreatedBy:             shared.ID(m.CreatedBy),
	}
}

// CompanyModelFromDomain creates a persistence model from a domain Company
func CompanyModelFromDomain(c *identity.Company) *CompanyModel {
	m := &CompanyModel{
		Name:                  c.Name,
		Email:                 c.Email,
		Phone:                 c.Phone,
		Address:               c.Address,
		City:                  c.City,
		StateProvince:         c.StateProvince,
		PostalCode:            c.PostalCode,
		Country:               c.Country,
		Website:               c.Website,
		RegistrationNumber:    c.RegistrationNumber,
		TaxID:                 c.TaxID,
		FiscalYearStart:       c.FiscalYearStart,
		DefaultCurrency:       c.DefaultCurrency.String(),
		Status:                c.Status,
		MaxUsers:              c.MaxUsers,
		SubscriptionExpiresAt: c.SubscriptionExpiresAt,
		CreatedBy:             c.CreatedBy.Int64(),
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// UserModel is the persistence model for the User aggregate
type UserModel struct {
	TenantAggregateModel
	Username          string `gorm:"type:varchar(100);not null;index"`
	Email             string `gorm:"type:varchar(255);not null;uniqueIndex"`
	FullName          string `gorm:"type:varchar(200)"`
	Enabled           bool   `gorm:"not null"`
	ExternalID        string `gorm:"type:varchar(255);index"`
	DepartmentID      *int64
	PreferredLanguage string `gorm:"type:varchar(10)"`
	Timezone          string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Username:            m.Username,
		Email:               m.Email,
		FullName:            m.FullName,
		Enabled:             m.Enabled,
		ExternalID:          m.ExternalID,
		DepartmentID:        idPtr(m.DepartmentID),
		PreferredLanguage:   m.PreferredLanguage,
		Timezone:            m.Timezone,
	}
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Username:          u.Username,
		Email:             u.Email,
		FullName:          u.FullName,
		Enabled:           u.Enabled,
		ExternalID:        u.ExternalID,
		DepartmentID:      int64Ptr(u.DepartmentID),
		PreferredLanguage: u.PreferredLanguage,
		Timezone:          u.Timezone,
	}
	m.FromDomainTenantAggregateRoot(u.TenantAggregateRoot)
	return m
}
