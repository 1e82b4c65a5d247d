package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestQuantitiesToInvoice(t *testing.T) {
	lineID := uint(1)
	p := Project{
		Quantity:  dec("10"),
		ListPrice: dec("200"),
		Progress:  dec("0.6"),
		InvoicedProgress: []InvoicedProgress{
			{Quantity: dec("2"), InvoiceLineID: &lineID},
			{Quantity: dec("1.5"), InvoiceLineID: &lineID},
		},
	}

	assert.True(t, p.TotalAmount().Equal(dec("2000")))
	assert.True(t, p.InvoicedProgressQuantity().Equal(dec("3.5")))
	assert.True(t, p.QuantityToInvoiceProgress().Equal(dec("2.5")))  // 6 merited - 3.5 billed
	assert.True(t, p.QuantityToInvoiceRemainder().Equal(dec("6.5"))) // 10 - 3.5
}

func TestProgressAmountRatio(t *testing.T) {
	p := Project{Quantity: dec("10"), ListPrice: dec("200"), Progress: dec("0.4")}
	assert.True(t, p.ProgressAmountRatio().Equal(dec("0.4")))

	empty := Project{Progress: dec("1")}
	assert.True(t, empty.ProgressAmountRatio().IsZero())
}

func TestInvoiceGroupKey(t *testing.T) {
	party := uint(7)
	a := Project{PartyID: &party}
	b := Project{PartyID: &party}
	assert.Equal(t, a.InvoiceGroupKey(), b.InvoiceGroupKey())

	b.GroupInvoice = true
	assert.NotEqual(t, a.InvoiceGroupKey(), b.InvoiceGroupKey())

	var c Project
	assert.NotEqual(t, a.InvoiceGroupKey(), c.InvoiceGroupKey())
}

func TestPendingToCompensateAdvancedAmount(t *testing.T) {
	fixedInvoiced := func(amount string, state InvoiceState) Milestone {
		m := Milestone{State: StateInvoiced, MilestoneFields: MilestoneFields{
			InvoiceMethod:     MethodFixed,
			AdvancementAmount: decp(amount),
		}}
		m.Invoice = &Invoice{State: state}
		return m
	}

	t.Run("live fixed invoices add their advance", func(t *testing.T) {
		p := Project{Milestones: []Milestone{
			fixedInvoiced("1000", InvoicePosted),
			fixedInvoiced("500", InvoiceDraft),
		}}
		assert.True(t, p.PendingToCompensateAdvancedAmount().Equal(dec("1500")))
	})

	t.Run("cancelled invoices drop out", func(t *testing.T) {
		p := Project{Milestones: []Milestone{
			fixedInvoiced("1000", InvoicePosted),
			fixedInvoiced("500", InvoiceCancel),
		}}
		assert.True(t, p.PendingToCompensateAdvancedAmount().Equal(dec("1000")))
	})

	t.Run("uninvoiced milestones do not count", func(t *testing.T) {
		m := Milestone{State: StateConfirmed, MilestoneFields: MilestoneFields{
			InvoiceMethod:     MethodFixed,
			AdvancementAmount: decp("1000"),
		}}
		p := Project{Milestones: []Milestone{m}}
		assert.True(t, p.PendingToCompensateAdvancedAmount().IsZero())
	})

	t.Run("compensation lines net the advance down", func(t *testing.T) {
		comp := Milestone{ID: 2, State: StateInvoiced, MilestoneFields: MilestoneFields{
			InvoiceMethod: MethodRemainder,
		}}
		comp.Invoice = &Invoice{State: InvoicePosted, Lines: []InvoiceLine{
			{OriginType: OriginMilestone, OriginID: 2, Amount: dec("2000")},
			{OriginType: OriginMilestone, OriginID: 2, Amount: dec("-600")},
		}}

		p := Project{Milestones: []Milestone{fixedInvoiced("1000", InvoicePosted), comp}}
		assert.True(t, p.PendingToCompensateAdvancedAmount().Equal(dec("400")))
	})

	t.Run("credit milestones subtract their own amount", func(t *testing.T) {
		credit := fixedInvoiced("-1000", InvoicePosted)
		credit.IsCredit = true

		p := Project{Milestones: []Milestone{fixedInvoiced("1000", InvoicePosted), credit}}
		assert.True(t, p.PendingToCompensateAdvancedAmount().IsZero())
	})
}

func TestInvoicedAmountMilestone(t *testing.T) {
	atPar := func(amount decimal.Decimal, from, to string) decimal.Decimal { return amount }

	withInvoice := func(amount string, currency string, state InvoiceState) Milestone {
		m := Milestone{State: StateInvoiced}
		m.Invoice = &Invoice{State: state, CurrencyCode: currency, UntaxedAmount: dec(amount)}
		return m
	}

	p := Project{Milestones: []Milestone{
		withInvoice("1000", "EUR", InvoicePosted),
		withInvoice("500", "EUR", InvoiceCancel), // skipped
		withInvoice("200", "USD", InvoiceDraft),
	}}

	assert.True(t, p.InvoicedAmountMilestone("EUR", atPar).Equal(dec("1200")))

	halved := func(amount decimal.Decimal, from, to string) decimal.Decimal {
		if from == to {
			return amount
		}
		return amount.Div(dec("2"))
	}
	assert.True(t, p.InvoicedAmountMilestone("EUR", halved).Equal(dec("1100")))
}
