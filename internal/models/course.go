package models

import "github.com/shopspring/decimal"

// Course is an offering students can be admitted to.
type Course struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Duration string          `json:"duration,omitempty"`
	Fee      decimal.Decimal `json:"fee"`
	Timings  []string        `json:"timings,omitempty"`
	Active   bool            `json:"active"`
}
