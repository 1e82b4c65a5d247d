package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decp(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func strp(s string) *string { return &s }

func intp(n int) *int { return &n }

func validFixedFields() MilestoneFields {
	return MilestoneFields{
		Kind:                 KindManual,
		InvoiceMethod:        MethodFixed,
		AdvancementProductID: strp("adv-product-id"),
		AdvancementAmount:    decp("1000"),
		CurrencyCode:         "EUR",
	}
}

func TestCheckFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*MilestoneFields)
		wantErr string
	}{
		{name: "valid fixed", mutate: func(f *MilestoneFields) {}},
		{
			name: "valid system percent",
			mutate: func(f *MilestoneFields) {
				*f = MilestoneFields{
					Kind:            KindSystem,
					Trigger:         TriggerOnProgress,
					TriggerProgress: decp("0.5"),
					InvoiceMethod:   MethodPercent,
					InvoicePercent:  decp("0.25"),
				}
			},
		},
		{
			name: "valid remainder",
			mutate: func(f *MilestoneFields) {
				*f = MilestoneFields{
					Kind:                  KindManual,
					InvoiceMethod:         MethodRemainder,
					CompensationProductID: strp("comp-product-id"),
				}
			},
		},
		{
			name:    "system without trigger",
			mutate:  func(f *MilestoneFields) { f.Kind = KindSystem },
			wantErr: "require a trigger",
		},
		{
			name:    "manual with trigger",
			mutate:  func(f *MilestoneFields) { f.Trigger = TriggerOnStart },
			wantErr: "only meaningful for system",
		},
		{
			name: "on_progress without threshold",
			mutate: func(f *MilestoneFields) {
				f.Kind = KindSystem
				f.Trigger = TriggerOnProgress
			},
			wantErr: "trigger_progress",
		},
		{
			name: "threshold out of range",
			mutate: func(f *MilestoneFields) {
				f.Kind = KindSystem
				f.Trigger = TriggerOnProgress
				f.TriggerProgress = decp("1.5")
			},
			wantErr: "between 0 and 1",
		},
		{
			name:    "fixed without amount",
			mutate:  func(f *MilestoneFields) { f.AdvancementAmount = nil },
			wantErr: "fixed method requires",
		},
		{
			name:    "fixed without currency",
			mutate:  func(f *MilestoneFields) { f.CurrencyCode = "" },
			wantErr: "fixed method requires",
		},
		{
			name:    "fixed with percent set",
			mutate:  func(f *MilestoneFields) { f.InvoicePercent = decp("0.5") },
			wantErr: "allows no percent",
		},
		{
			name: "percent with advancement set",
			mutate: func(f *MilestoneFields) {
				f.InvoiceMethod = MethodPercent
				f.InvoicePercent = decp("0.5")
			},
			wantErr: "allows no advancement",
		},
		{
			name: "progress without compensation product",
			mutate: func(f *MilestoneFields) {
				*f = MilestoneFields{Kind: KindManual, InvoiceMethod: MethodProgress}
			},
			wantErr: "requires a compensation product",
		},
		{
			name:    "month out of range",
			mutate:  func(f *MilestoneFields) { f.Month = intp(13) },
			wantErr: "month must be",
		},
		{
			name:    "weekday out of range",
			mutate:  func(f *MilestoneFields) { f.Weekday = intp(7) },
			wantErr: "weekday must be",
		},
		{
			name:    "day out of range",
			mutate:  func(f *MilestoneFields) { f.Day = intp(0) },
			wantErr: "day must be",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFixedFields()
			tt.mutate(&f)
			err := f.CheckFields()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	m := Milestone{ID: 12}
	assert.Equal(t, "milestone/12", m.DisplayName())
	m.Number = "MS0012"
	assert.Equal(t, "MS0012", m.DisplayName())
}

func TestDuplicateClearsIssuedState(t *testing.T) {
	invoiceID := uint(4)
	when := time.Date(2026, time.August, 30, 0, 0, 0, 0, time.UTC)
	planned := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	m := Milestone{
		ID:                 1,
		Number:             "MS0001",
		ProjectID:          2,
		MilestoneFields:    validFixedFields(),
		IsCredit:           true,
		InvoiceDate:        &when,
		PlannedInvoiceDate: &planned,
		InvoiceID:          &invoiceID,
		State:              StateInvoiced,
	}

	dup := m.Duplicate()

	assert.Zero(t, dup.ID)
	assert.Empty(t, dup.Number)
	assert.Nil(t, dup.InvoiceID)
	assert.Nil(t, dup.InvoiceDate)
	assert.Equal(t, StateDraft, dup.State)

	assert.Equal(t, m.ProjectID, dup.ProjectID)
	assert.Equal(t, m.MilestoneFields, dup.MilestoneFields)
	assert.True(t, dup.IsCredit)
	assert.Equal(t, &planned, dup.PlannedInvoiceDate)
}
