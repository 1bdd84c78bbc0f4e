package models

import "time"

type CancerType struct {
	ID          uint      `gorm:"primarykey"`
	Name        string    `gorm:"size:100;not null;uniqueIndex"`
	Slug        string    `gorm:"size:100;not null;uniqueIndex"`
	Description string    `gorm:"type:text;not null"`
	Symptoms    string    `gorm:"type:text;not null"`
	RiskLevel   Level     `gorm:"size:20;not null;default:MEDIUM;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Causes      []Cause      `gorm:"foreignKey:CancerTypeID;constraint:OnDelete:CASCADE"`
	Preventions []Prevention `gorm:"foreignKey:CancerTypeID;constraint:OnDelete:CASCADE"`
	Treatments  []Treatment  `gorm:"foreignKey:CancerTypeID;constraint:OnDelete:CASCADE"`
}

type CauseCategory struct {
	ID          uint   `gorm:"primarykey"`
	Name        string `gorm:"size:100;not null;uniqueIndex"`
	Description string `gorm:"type:text;not null"`

	Causes []Cause `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

// DefaultRiskFactor is used when a cause is created without one.
const DefaultRiskFactor = 1.0

type Cause struct {
	ID           uint    `gorm:"primarykey"`
	CancerTypeID uint    `gorm:"not null;index"`
	CategoryID   uint    `gorm:"not null;index"`
	Name         string  `gorm:"size:100;not null"`
	Description  string  `gorm:"type:text;not null"`
	RiskFactor   float64 `gorm:"not null"`

	CancerType *CancerType
	Category   *CauseCategory
}

type Prevention struct {
	ID            uint   `gorm:"primarykey"`
	CancerTypeID  uint   `gorm:"not null;index"`
	Title         string `gorm:"size:200;not null"`
	Description   string `gorm:"type:text;not null"`
	Effectiveness Level  `gorm:"size:20;not null;default:MEDIUM;index"`

	CancerType *CancerType
}

type Treatment struct {
	ID            uint          `gorm:"primarykey"`
	CancerTypeID  uint          `gorm:"not null;index"`
	Name          string        `gorm:"size:200;not null"`
	Description   string        `gorm:"type:text;not null"`
	SideEffects   string        `gorm:"type:text;not null"`
	SuccessRate   string        `gorm:"size:100"`
	TreatmentType TreatmentType `gorm:"size:50;not null;index"`

	CancerType *CancerType
}

// All returns every model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Account{},
		&Profile{},
		&Session{},
		&CancerType{},
		&CauseCategory{},
		&Cause{},
		&Prevention{},
		&Treatment{},
	}
}
