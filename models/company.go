package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is the tenant company issuing milestone invoices. It lives in the
// public schema next to its owning user.
type Company struct {
	Id          string `json:"id" gorm:"primaryKey;size:36"`
	CompanyName string `json:"company_name" gorm:"not null;unique"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Zip         string `json:"zip"`
	UID         string `json:"uid"`

	// Contact person.
	ContactFirstName string `json:"contact_first_name"`
	ContactLastName  string `json:"contact_last_name"`
	PhoneNumber      string `json:"phone_number"`

	// Currency company amounts are reported in.
	CurrencyCode string `json:"currency" gorm:"size:3;not null;default:EUR"`

	UserId     string `json:"-" gorm:"size:36"`
	User       User   `json:"user" gorm:"foreignKey:UserId;references:Id"`
	SchemaName string `json:"-"`
}

func (company *Company) BeforeCreate(tx *gorm.DB) (err error) {
	if company.Id == "" {
		company.Id = uuid.NewString()
	}
	return
}
