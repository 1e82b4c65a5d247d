package models

import (
	"sort"
	"time"
)

// TemplateGroup is a named, orderable collection of milestone templates.
type TemplateGroup struct {
	ID          uint                `json:"id" gorm:"primaryKey"`
	Name        string              `json:"name" gorm:"not null"`
	Active      bool                `json:"active" gorm:"not null;default:true"`
	Description string              `json:"description"`
	Lines       []MilestoneTemplate `json:"lines" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// MilestoneTemplate carries every attribute a milestone needs except the
// project-specific ones. It is pure configuration and has no workflow.
type MilestoneTemplate struct {
	ID       uint `json:"id" gorm:"primaryKey"`
	GroupID  uint `json:"group_id" gorm:"index;not null"`
	Sequence *int `json:"sequence"` // ascending order, nulls last

	MilestoneFields `gorm:"embedded"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderedLines returns the group's templates sorted by sequence ascending,
// nulls last, ties broken by id.
func (g *TemplateGroup) OrderedLines() []MilestoneTemplate {
	lines := make([]MilestoneTemplate, len(g.Lines))
	copy(lines, g.Lines)
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i].Sequence, lines[j].Sequence
		switch {
		case a == nil && b == nil:
			return lines[i].ID < lines[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a < *b
		default:
			return lines[i].ID < lines[j].ID
		}
	})
	return lines
}

// Compute instantiates one unsaved milestone per template for the given
// project, preserving template order.
func (g *TemplateGroup) Compute(project *Project) []*Milestone {
	milestones := make([]*Milestone, 0, len(g.Lines))
	for _, line := range g.OrderedLines() {
		milestones = append(milestones, line.ComputeMilestone(project))
	}
	return milestones
}

// ComputeMilestone maps the template onto a new draft milestone bound to the
// project. Only the field group of the active invoice method is carried over.
func (t *MilestoneTemplate) ComputeMilestone(project *Project) *Milestone {
	m := &Milestone{
		ProjectID: project.ID,
		Project:   project,
		State:     StateDraft,
	}
	m.Kind = t.Kind
	if t.Kind == KindSystem {
		m.Trigger = t.Trigger
		m.TriggerProgress = t.TriggerProgress
	}
	m.InvoiceMethod = t.InvoiceMethod
	switch t.InvoiceMethod {
	case MethodFixed:
		m.AdvancementProductID = t.AdvancementProductID
		m.AdvancementProduct = t.AdvancementProduct
		m.AdvancementAmount = t.AdvancementAmount
		m.CurrencyCode = t.CurrencyCode
	case MethodPercent:
		m.InvoicePercent = t.InvoicePercent
		m.CompensationProductID = t.CompensationProductID
		m.CompensationProduct = t.CompensationProduct
	default:
		m.CompensationProductID = t.CompensationProductID
		m.CompensationProduct = t.CompensationProduct
	}
	m.Months = t.Months
	m.Month = t.Month
	m.Weeks = t.Weeks
	m.Weekday = t.Weekday
	m.Days = t.Days
	m.Day = t.Day
	m.Description = t.Description
	return m
}
