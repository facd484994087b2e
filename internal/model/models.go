package model

import (
	"time"
)

// Conversion is one handled conversion request. Only the host of the
// subscription is stored; paths and queries often carry access tokens.
type Conversion struct {
	ID        uint      `gorm:"primaryKey" csv:"id"`
	CreatedAt time.Time `gorm:"index" csv:"created_at"`

	Mode       string `csv:"mode"`
	SourceHost string `gorm:"index" csv:"source_host"`

	// Outcome
	Status     int    `csv:"status"` // HTTP status, or 0 for CLI runs that failed before output
	Code       string `csv:"code"`   // error code, empty on success
	Proxies    int    `csv:"proxies"`
	Dropped    int    `csv:"dropped"`
	DurationMS int64  `csv:"duration_ms"`
}

// Succeeded reports whether the conversion produced a document.
func (c Conversion) Succeeded() bool {
	return c.Code == "" && c.Status >= 200 && c.Status < 300
}
