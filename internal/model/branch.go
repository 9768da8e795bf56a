package model

// Branch is a tenant location owning its own products and transactions.
type Branch struct {
	BaseModel
	Code string `gorm:"type:varchar(20);uniqueIndex;not null" json:"code" validate:"required"`
	Name string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
}
