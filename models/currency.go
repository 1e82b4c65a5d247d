package models

import "github.com/shopspring/decimal"

// Currency holds the conversion rate into the company currency: one unit of
// this currency equals Rate units of the company currency.
type Currency struct {
	Code   string          `json:"code" gorm:"primaryKey;size:3"`
	Digits int             `json:"digits" gorm:"not null;default:2"`
	Rate   decimal.Decimal `json:"rate" gorm:"type:numeric(16,8);not null;default:1"`
}
