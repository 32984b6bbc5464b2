package httpserver

import (
	"github.com/go-playground/validator/v10"

	"github.com/bryanwahyu/social-intake/internal/application/agent"
)

// Intake DTO. Business rules (admissible age, income policy) belong to the
// pipeline validator; this layer only bounds the payload shape.
type createApplicationRequest struct {
	ApplicationID          string   `json:"application_id" validate:"required,min=1,max=64"`
	FullName               string   `json:"full_name" validate:"required,max=200"`
	Age                    int      `json:"age" validate:"gte=0,lte=150"`
	Address                string   `json:"address" validate:"required,max=500"`
	RegionCode             string   `json:"region_code" validate:"omitempty,max=16"`
	EmploymentStatus       string   `json:"employment_status" validate:"omitempty,max=32"`
	NetMonthlyIncome       *float64 `json:"net_monthly_income"`
	CreditObligationsRatio *float64 `json:"credit_obligations_ratio"`
	DependentsUnder12      *int     `json:"dependents_under_12" validate:"omitempty,gte=0,lte=20"`
}

type chatRequest struct {
	Messages []agent.Message `json:"messages" validate:"required,min=1,dive"`
	UseLLM   bool            `json:"use_llm"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}
