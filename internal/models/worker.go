package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Worker struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	FirstName   string `gorm:"not null" json:"firstName"`
	LastName    string `json:"lastName"`
	WorkplaceID uint   `gorm:"not null;index" json:"workplaceId"`

	// Default weekly salary copied into each new week record.
	SalaireHebdomadaire decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"salaireHebdomadaire"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Worker) TableName() string {
	return "workers"
}

// FullName returns "First Last" without trailing spaces.
func (w *Worker) FullName() string {
	return strings.TrimSpace(w.FirstName + " " + w.LastName)
}

func (w *Worker) IsValid() bool {
	if strings.TrimSpace(w.FirstName) == "" {
		return false
	}
	if w.WorkplaceID == 0 {
		return false
	}
	return !w.SalaireHebdomadaire.IsNegative()
}
