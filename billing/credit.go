package billing

import (
	"github.com/shopspring/decimal"

	"meilenstein-backend/models"
)

// Credit builds the reversal milestone netting an invoiced milestone against
// a credit invoice. The reversal is always a manual fixed milestone flagged
// is_credit; its amount is the negation of the original advance, or, for
// non-fixed methods, of the invoice line previously attributed to the
// original milestone.
func Credit(m *models.Milestone, creditInvoice *models.Invoice, config *models.Configuration, clock Clock) (*models.Milestone, error) {
	if m.InvoiceID == nil && m.Invoice == nil {
		return nil, validationErrorf(m.DisplayName(), "only an invoiced milestone can be credited")
	}
	if creditInvoice == nil {
		return nil, validationErrorf(m.DisplayName(), "credit needs a credit invoice")
	}

	credit := &models.Milestone{
		ProjectID: m.ProjectID,
		Project:   m.Project,
		IsCredit:  true,
		State:     models.StateDraft,
	}
	credit.Kind = models.KindManual
	credit.InvoiceMethod = models.MethodFixed
	credit.Description = m.Description
	credit.CurrencyCode = m.CurrencyCode

	if m.InvoiceMethod == models.MethodFixed {
		if m.AdvancementAmount == nil {
			return nil, invariantf("fixed milestone %s has no advancement amount", m.DisplayName())
		}
		amount := m.AdvancementAmount.Neg()
		credit.AdvancementAmount = &amount
	} else {
		if m.Invoice == nil {
			return nil, invariantf("milestone %s has an invoice id but no invoice loaded", m.DisplayName())
		}
		credit.CurrencyCode = m.Invoice.CurrencyCode
		amount := decimal.Zero
		for _, line := range m.Invoice.Lines {
			if line.OriginType == models.OriginMilestone && line.OriginID == m.ID {
				amount = line.Amount.Neg()
				break
			}
		}
		credit.AdvancementAmount = &amount
	}

	// The advancement product of a reversal comes from the configuration, the
	// original's own product as fallback.
	if config != nil && config.AdvancementProductID != nil {
		credit.AdvancementProductID = config.AdvancementProductID
		credit.AdvancementProduct = config.AdvancementProduct
	} else {
		credit.AdvancementProductID = m.AdvancementProductID
		credit.AdvancementProduct = m.AdvancementProduct
	}
	if credit.AdvancementProductID == nil {
		return nil, configErrorf("no advancement product configured for credit milestones")
	}

	when := creditInvoice.InvoiceDate
	if when == nil {
		today := clock.Today()
		when = &today
	}
	credit.InvoiceDate = when
	credit.InvoiceID = &creditInvoice.ID
	credit.Invoice = creditInvoice
	return credit, nil
}
