package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"workshop-payroll-bot/internal/payroll"
)

// WeekRecord is one worker's attendance and pay for one week at one workplace.
type WeekRecord struct {
	ID          string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	WorkerID    uint   `gorm:"not null;index;uniqueIndex:idx_record_worker_week" json:"workerId"`
	WorkplaceID uint   `gorm:"not null;index;uniqueIndex:idx_record_worker_week" json:"workplaceId"`
	WeekID      uint   `gorm:"not null;index;uniqueIndex:idx_record_worker_week" json:"weekId"`

	SalaireHebdomadaire decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"salaireHebdomadaire"`

	// Regular hours, Monday to Saturday
	Lundi    decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"lundi"`
	Mardi    decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"mardi"`
	Mercredi decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"mercredi"`
	Jeudi    decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"jeudi"`
	Vendredi decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"vendredi"`
	Samedi   decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"samedi"`

	// Overtime hours
	LundiSupp    decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"lundiSupp"`
	MardiSupp    decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"mardiSupp"`
	MercrediSupp decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"mercrediSupp"`
	JeudiSupp    decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"jeudiSupp"`
	VendrediSupp decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"vendrediSupp"`
	SamediSupp   decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"samediSupp"`

	Avance      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"avance"`
	Description string          `gorm:"type:varchar(500)" json:"description"`
	IsPaid      bool            `gorm:"not null;default:false;index" json:"isPaid"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Worker *Worker `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	Week   *Week   `gorm:"foreignKey:WeekID" json:"week,omitempty"`
}

func (WeekRecord) TableName() string {
	return "week_records"
}

// BeforeCreate assigns the opaque record id.
func (r *WeekRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

func (r *WeekRecord) regular() [payroll.DaysInWeek]*decimal.Decimal {
	return [payroll.DaysInWeek]*decimal.Decimal{&r.Lundi, &r.Mardi, &r.Mercredi, &r.Jeudi, &r.Vendredi, &r.Samedi}
}

func (r *WeekRecord) overtime() [payroll.DaysInWeek]*decimal.Decimal {
	return [payroll.DaysInWeek]*decimal.Decimal{&r.LundiSupp, &r.MardiSupp, &r.MercrediSupp, &r.JeudiSupp, &r.VendrediSupp, &r.SamediSupp}
}

// Attendance returns the day columns as the engine's indexed week.
func (r *WeekRecord) Attendance() payroll.Attendance {
	var a payroll.Attendance
	reg, ot := r.regular(), r.overtime()
	for i := range a {
		a[i] = payroll.DayHours{Regular: *reg[i], Overtime: *ot[i]}
	}
	return a
}

// SetAttendance writes the indexed week back to the day columns.
func (r *WeekRecord) SetAttendance(a payroll.Attendance) {
	reg, ot := r.regular(), r.overtime()
	for i, d := range a {
		*reg[i] = d.Regular
		*ot[i] = d.Overtime
	}
}

// ToPayroll returns the values the engine computes over.
func (r *WeekRecord) ToPayroll() payroll.Record {
	return payroll.Record{
		ID:                  r.ID,
		SalaireHebdomadaire: r.SalaireHebdomadaire,
		Attendance:          r.Attendance(),
		Avance:              r.Avance,
		IsPaid:              r.IsPaid,
	}
}

// IsValid checks the non-negativity invariants and references.
func (r *WeekRecord) IsValid() bool {
	if r.WorkerID == 0 || r.WorkplaceID == 0 || r.WeekID == 0 {
		return false
	}
	return payroll.ValidateRecord(r.ToPayroll()) == nil
}
