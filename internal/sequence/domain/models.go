package domain

import "time"

// LastInvoiceNumberKey stores the number of the most recently created
// invoice.
const LastInvoiceNumberKey = "lastInvoiceNum"

// Setting is a single key/value application setting.
type Setting struct {
	Key       string    `gorm:"column:setting_key;primaryKey;type:varchar(64)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime:false"`
}

// TableName sets the database table name.
func (Setting) TableName() string { return "settings" }
