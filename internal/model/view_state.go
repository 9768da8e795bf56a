package model

import (
	"time"

	"gorm.io/datatypes"
)

// ViewPrefs is the persisted part of a list view: search, filter, columns, selection.
type ViewPrefs struct {
	Search        string     `json:"search"`
	StockLevel    StockLevel `json:"stock_level,omitempty"`
	HiddenColumns []string   `json:"hidden_columns"`
	SelectedIDs   []ID       `json:"selected_ids"`
	PageSize      int        `json:"page_size"`
}

type ViewState struct {
	UserID    string                        `gorm:"type:varchar(255);primaryKey" json:"user_id"`
	BranchID  ID                            `gorm:"type:varchar(64);primaryKey" json:"branch_id"`
	View      string                        `gorm:"type:varchar(50);primaryKey" json:"view"`
	Prefs     datatypes.JSONType[ViewPrefs] `json:"prefs"`
	UpdatedAt time.Time                     `json:"updated_at"`
}
