package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceState string

const (
	InvoiceDraft  InvoiceState = "draft"
	InvoicePosted InvoiceState = "posted"
	InvoicePaid   InvoiceState = "paid"
	InvoiceCancel InvoiceState = "cancel"
)

// OriginType tags the record an invoice line points back to.
type OriginType string

const (
	OriginNone             OriginType = ""
	OriginMilestone        OriginType = "milestone"
	OriginInvoicedProgress OriginType = "invoiced_progress"
)

// Invoice is the customer invoice a milestone produces. Tax computation is a
// flat recompute over the lines; posting and payment live outside this module.
type Invoice struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Number string `json:"number" gorm:"size:32;index"`

	ProjectID *uint    `json:"project_id" gorm:"index"`
	Project   *Project `json:"-" gorm:"foreignKey:ProjectID"`
	PartyID   uint     `json:"party_id" gorm:"index;not null"`
	Party     *Party   `json:"party,omitempty" gorm:"foreignKey:PartyID"`

	CurrencyCode string     `json:"currency" gorm:"size:3;not null"`
	InvoiceDate  *time.Time `json:"invoice_date" gorm:"type:date"`

	State InvoiceState `json:"state" gorm:"size:10;not null;default:draft;index"`

	UntaxedAmount decimal.Decimal `json:"untaxed_amount" gorm:"type:numeric(16,4)"`
	TaxAmount     decimal.Decimal `json:"tax_amount" gorm:"type:numeric(16,4)"`
	Total         decimal.Decimal `json:"total" gorm:"type:numeric(16,4)"`

	Lines []InvoiceLine `json:"lines" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InvoiceLine struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	InvoiceID uint `json:"-" gorm:"index;not null"`

	ProductID *string  `json:"product_id" gorm:"size:36"`
	Product   *Product `json:"-" gorm:"foreignKey:ProductID;references:Id"`

	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity" gorm:"type:numeric(16,4)"`
	Unit        string          `json:"unit" gorm:"size:16"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(16,4)"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(16,4)"`

	OriginType OriginType `json:"origin_type" gorm:"size:20;index:idx_invoice_lines_origin"`
	OriginID   uint       `json:"origin_id" gorm:"index:idx_invoice_lines_origin"`
}

// RecomputeTaxes refreshes the invoice totals from its lines with a flat tax
// rate. Called once per touched invoice at the end of an invoicing batch.
func (inv *Invoice) RecomputeTaxes(taxRate decimal.Decimal) {
	untaxed := decimal.Zero
	for _, line := range inv.Lines {
		untaxed = untaxed.Add(line.Amount)
	}
	inv.UntaxedAmount = untaxed
	inv.TaxAmount = untaxed.Mul(taxRate).Round(4)
	inv.Total = inv.UntaxedAmount.Add(inv.TaxAmount)
}
