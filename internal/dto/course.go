package dto

import "github.com/shopspring/decimal"

// CourseRequest is the create/update payload for a course.
type CourseRequest struct {
	Name     string          `json:"name" validate:"required,max=150"`
	Duration string          `json:"duration,omitempty" validate:"max=50"`
	Fee      decimal.Decimal `json:"fee"`
	Timings  []string        `json:"timings,omitempty" validate:"dive,required"`
	Active   *bool           `json:"active,omitempty"`
}
