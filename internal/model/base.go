package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel handles ID and standard Audit Trails
type BaseModel struct {
	ID        ID        `gorm:"type:varchar(64);primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Audit User Tracking
	CreatedBy string `gorm:"type:varchar(255)" json:"created_by"`
	UpdatedBy string `gorm:"type:varchar(255)" json:"updated_by"`
}

// Hook Before Create untuk generate ID otomatis, kecuali sudah diisi (import)
func (base *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID.IsZero() {
		base.ID = NewID()
	}
	return
}
