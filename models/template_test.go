package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedLines(t *testing.T) {
	group := TemplateGroup{Lines: []MilestoneTemplate{
		{ID: 1, Sequence: nil},
		{ID: 2, Sequence: intp(20)},
		{ID: 3, Sequence: intp(10)},
		{ID: 4, Sequence: intp(10)},
		{ID: 5, Sequence: nil},
	}}

	got := group.OrderedLines()
	ids := make([]uint, 0, len(got))
	for _, line := range got {
		ids = append(ids, line.ID)
	}
	// Sequence ascending, ties by id, nulls last by id.
	assert.Equal(t, []uint{3, 4, 2, 1, 5}, ids)
}

func TestComputeMilestoneCarriesActiveFieldGroupOnly(t *testing.T) {
	project := &Project{ID: 9}

	t.Run("fixed template", func(t *testing.T) {
		tpl := MilestoneTemplate{MilestoneFields: MilestoneFields{
			Kind:                  KindManual,
			InvoiceMethod:         MethodFixed,
			AdvancementProductID:  strp("adv-product-id"),
			AdvancementAmount:     decp("500"),
			CurrencyCode:          "EUR",
			InvoicePercent:        decp("0.5"),          // inactive group, must not carry
			CompensationProductID: strp("comp-product"), // inactive group, must not carry
			Trigger:               TriggerOnStart,       // manual kind, must not carry
			Months:                2,
			Day:                   intp(15),
			Description:           "advance",
		}}

		m := tpl.ComputeMilestone(project)
		assert.Equal(t, project.ID, m.ProjectID)
		assert.Equal(t, StateDraft, m.State)
		assert.Equal(t, MethodFixed, m.InvoiceMethod)
		assert.Equal(t, strp("adv-product-id"), m.AdvancementProductID)
		require.NotNil(t, m.AdvancementAmount)
		assert.Equal(t, "EUR", m.CurrencyCode)
		assert.Nil(t, m.InvoicePercent)
		assert.Nil(t, m.CompensationProductID)
		assert.Equal(t, TriggerNone, m.Trigger)
		assert.Equal(t, 2, m.Months)
		assert.Equal(t, intp(15), m.Day)
		assert.Equal(t, "advance", m.Description)
		assert.NoError(t, m.CheckFields())
	})

	t.Run("system percent template", func(t *testing.T) {
		tpl := MilestoneTemplate{MilestoneFields: MilestoneFields{
			Kind:                 KindSystem,
			Trigger:              TriggerOnProgress,
			TriggerProgress:      decp("0.5"),
			InvoiceMethod:        MethodPercent,
			InvoicePercent:       decp("0.3"),
			AdvancementProductID: strp("adv-product-id"), // inactive group
			AdvancementAmount:    decp("500"),            // inactive group
			CurrencyCode:         "EUR",
		}}

		m := tpl.ComputeMilestone(project)
		assert.Equal(t, KindSystem, m.Kind)
		assert.Equal(t, TriggerOnProgress, m.Trigger)
		require.NotNil(t, m.TriggerProgress)
		assert.Equal(t, MethodPercent, m.InvoiceMethod)
		require.NotNil(t, m.InvoicePercent)
		assert.Nil(t, m.AdvancementProductID)
		assert.Nil(t, m.AdvancementAmount)
		assert.NoError(t, m.CheckFields())
	})

	t.Run("remainder template", func(t *testing.T) {
		tpl := MilestoneTemplate{MilestoneFields: MilestoneFields{
			Kind:                  KindManual,
			InvoiceMethod:         MethodRemainder,
			CompensationProductID: strp("comp-product-id"),
		}}

		m := tpl.ComputeMilestone(project)
		assert.Equal(t, MethodRemainder, m.InvoiceMethod)
		assert.Equal(t, strp("comp-product-id"), m.CompensationProductID)
		assert.NoError(t, m.CheckFields())
	})
}

func TestComputePreservesTemplateOrder(t *testing.T) {
	group := TemplateGroup{Lines: []MilestoneTemplate{
		{ID: 1, Sequence: intp(2), MilestoneFields: MilestoneFields{
			Kind: KindManual, InvoiceMethod: MethodRemainder,
			CompensationProductID: strp("comp-product-id"),
			Description:           "final",
		}},
		{ID: 2, Sequence: intp(1), MilestoneFields: MilestoneFields{
			Kind: KindManual, InvoiceMethod: MethodFixed,
			AdvancementProductID: strp("adv-product-id"),
			AdvancementAmount:    decp("500"),
			CurrencyCode:         "EUR",
			Description:          "advance",
		}},
	}}

	milestones := group.Compute(&Project{ID: 1})
	require.Len(t, milestones, 2)
	assert.Equal(t, "advance", milestones[0].Description)
	assert.Equal(t, "final", milestones[1].Description)
}
