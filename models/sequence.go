package models

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequence is a named counter issuing formatted document numbers.
type Sequence struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Code    string `json:"code" gorm:"size:64;uniqueIndex;not null"`
	Prefix  string `json:"prefix" gorm:"size:16"`
	Padding int    `json:"padding" gorm:"not null;default:4"`
	Next    int64  `json:"next" gorm:"not null;default:1"`
}

// Format renders one counter value as a document number.
func (s *Sequence) Format(n int64) string {
	return fmt.Sprintf("%s%0*d", s.Prefix, s.Padding, n)
}

// Allocate issues the next number under a row lock, so two transactions
// confirming milestones concurrently never share a number.
func (s *Sequence) Allocate(tx *gorm.DB) (string, error) {
	var locked Sequence
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&locked, s.ID).Error; err != nil {
		return "", err
	}
	number := locked.Format(locked.Next)
	if err := tx.Model(&Sequence{}).Where("id = ?", locked.ID).
		Update("next", locked.Next+1).Error; err != nil {
		return "", err
	}
	s.Next = locked.Next + 1
	return number, nil
}
