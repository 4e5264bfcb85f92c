package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/techskill-console/internal/models"
)

// DashboardResponse captures the aggregated console dashboard payload.
type DashboardResponse struct {
	Enquiries  EnquiryStats    `json:"enquiries"`
	Admissions AdmissionStats  `json:"admissions"`
	Courses    CourseStats     `json:"courses"`
	Fees       FeeStats        `json:"fees"`
	Overdue    []OverdueItem   `json:"overdue"`
	Recent     []RecentEnquiry `json:"recentEnquiries"`
	AsOf       time.Time       `json:"asOf"`
}

// EnquiryStats summarises the reconciled enquiry list.
type EnquiryStats struct {
	Total            int            `json:"total"`
	ByStatus         map[string]int `json:"byStatus"`
	OverdueFollowups int            `json:"overdueFollowups"`
	DueToday         int            `json:"dueToday"`
}

// AdmissionStats counts admissions.
type AdmissionStats struct {
	Total     int `json:"total"`
	ThisMonth int `json:"thisMonth"`
}

// CourseStats counts courses.
type CourseStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// FeeStats sums collected payments.
type FeeStats struct {
	Collected          decimal.Decimal `json:"collected"`
	CollectedThisMonth decimal.Decimal `json:"collectedThisMonth"`
	Payments           int             `json:"payments"`
}

// OverdueItem is one enquiry whose next follow-up has passed.
type OverdueItem struct {
	EnquiryID    int64                `json:"enquiryId"`
	Name         string               `json:"name"`
	MobileNumber string               `json:"mobileNumber"`
	CourseName   string               `json:"courseName"`
	Status       models.EnquiryStatus `json:"status"`
	NextFollowup string               `json:"nextFollowup"`
	DaysOverdue  int                  `json:"daysOverdue"`
}

// RecentEnquiry is a compact row for the latest enquiries panel.
type RecentEnquiry struct {
	ID          int64                `json:"id"`
	Name        string               `json:"name"`
	CourseName  string               `json:"courseName"`
	Status      models.EnquiryStatus `json:"status"`
	EnquiryDate string               `json:"enquiryDate"`
}
