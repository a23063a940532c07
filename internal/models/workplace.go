package models

import "time"

// Workplace is a workshop site workers are scheduled into.
type Workplace struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Workplace) TableName() string {
	return "workplaces"
}

func (w *Workplace) IsValid() bool {
	return len(w.Name) > 0 && len(w.Name) <= 100
}
