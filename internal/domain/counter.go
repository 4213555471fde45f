package domain

import "time"

// Counter is a named monotonically increasing sequence, e.g. "BOOK-20250301".
type Counter struct {
	Name      string    `gorm:"primaryKey;size:64"`
	Value     int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (Counter) TableName() string { return "counters" }
