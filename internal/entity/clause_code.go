package entity

import "time"

// ClauseCode maps a regulatory clause number to its description.
type ClauseCode struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Code        string    `gorm:"uniqueIndex;not null" json:"code"`
	Description string    `gorm:"not null" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the ClauseCode model.
func (ClauseCode) TableName() string {
	return "clause_codes"
}
