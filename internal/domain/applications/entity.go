package applications

import (
	"time"
)

// ID tipe untuk Application
type ApplicationID string

// EmploymentStatus enum
type EmploymentStatus string

const (
	EmploymentEmployed     EmploymentStatus = "employed"
	EmploymentSelfEmployed EmploymentStatus = "self_employed"
	EmploymentUnemployed   EmploymentStatus = "unemployed"
	EmploymentStudent      EmploymentStatus = "student"
	EmploymentRetired      EmploymentStatus = "retired"
)

// Aggregate Root: Application
// Immutable after intake; only documents and decisions accumulate.
type Application struct {
	ID                     ApplicationID    `json:"id"`
	FullName               string           `json:"full_name"`
	Age                    int              `json:"age"`
	Address                string           `json:"address"`
	RegionCode             string           `json:"region_code,omitempty"`
	EmploymentStatus       EmploymentStatus `json:"employment_status"`
	NetMonthlyIncome       *float64         `json:"net_monthly_income,omitempty"`
	CreditObligationsRatio *float64         `json:"credit_obligations_ratio,omitempty"`
	DependentsUnder12      *int             `json:"dependents_under_12,omitempty"`
	CreatedAt              time.Time        `json:"created_at"`
}

// Document belongs to exactly one Application. ContentText holds whatever the
// extraction boundary produced, possibly empty.
type Document struct {
	ID             string        `json:"id"`
	ApplicationID  ApplicationID `json:"application_id"`
	Filename       string        `json:"filename"`
	ContentType    string        `json:"content_type,omitempty"`
	SizeBytes      int64         `json:"size_bytes"`
	ContentText    string        `json:"-"`
	ContentPreview string        `json:"content_preview,omitempty"`
	ObjectURL      string        `json:"object_url,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}
