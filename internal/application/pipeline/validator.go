package pipeline

import (
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/social-intake/internal/domain/applications"
)

// Rule names. Declaration order here is the order findings are emitted in,
// which is also the tie-break order for recommendations.
const (
	RuleAgeInRange         = "age_in_range"
	RuleIncomeNonNegative  = "income_non_negative"
	RuleEmploymentKnown    = "employment_status_known"
	RuleDocumentsPresent   = "documents_present"
	RuleFullNamePresent    = "full_name_present"
	RuleAddressPresent     = "address_present"
	RuleIncomeProvided     = "income_provided"
	RuleIncomeMeetsMinimum = "income_meets_minimum"
	RuleObligationsInRange = "obligations_ratio_in_range"
	RuleBankStatement      = "bank_statement_evidence"
	RuleIncomeProof        = "income_proof_evidence"
)

// Rules holds the configured policy bounds.
type Rules struct {
	MinAge            int
	MaxAge            int
	MinMonthlyIncome  float64
	AllowedEmployment []domain.EmploymentStatus
}

// DefaultRules mirrors config.yaml defaults.
func DefaultRules() Rules {
	return Rules{
		MinAge:           18,
		MaxAge:           100,
		MinMonthlyIncome: 2500,
		AllowedEmployment: []domain.EmploymentStatus{
			domain.EmploymentEmployed,
			domain.EmploymentSelfEmployed,
			domain.EmploymentUnemployed,
			domain.EmploymentStudent,
			domain.EmploymentRetired,
		},
	}
}

// Validate applies every rule independently and collects all findings; it
// never short-circuits and never fails. Pure function, no side effects.
func Validate(app *domain.Application, docs []*domain.Document, rules Rules) domain.ValidationResult {
	var v domain.ValidationResult
	add := func(rule string, sev domain.Severity, passed bool, detail string) {
		v.Findings = append(v.Findings, domain.Finding{Rule: rule, Severity: sev, Passed: passed, Detail: detail})
	}

	// age_in_range (blocking)
	if app.Age >= rules.MinAge && app.Age <= rules.MaxAge {
		add(RuleAgeInRange, domain.SeverityBlocking, true, "")
	} else {
		add(RuleAgeInRange, domain.SeverityBlocking, false,
			fmt.Sprintf("age %d is outside the admissible range %d-%d", app.Age, rules.MinAge, rules.MaxAge))
	}

	// income_non_negative (blocking). A missing income is handled by the
	// advisory income_provided rule below, not here.
	if app.NetMonthlyIncome != nil && *app.NetMonthlyIncome < 0 {
		add(RuleIncomeNonNegative, domain.SeverityBlocking, false,
			fmt.Sprintf("net monthly income %.2f is negative", *app.NetMonthlyIncome))
	} else {
		add(RuleIncomeNonNegative, domain.SeverityBlocking, true, "")
	}

	// employment_status_known: blocking when missing, advisory when unknown.
	switch {
	case app.EmploymentStatus == "":
		add(RuleEmploymentKnown, domain.SeverityBlocking, false, "employment status is missing")
	case !employmentAllowed(app.EmploymentStatus, rules.AllowedEmployment):
		add(RuleEmploymentKnown, domain.SeverityAdvisory, false,
			fmt.Sprintf("employment status %q is not a recognized value", app.EmploymentStatus))
	default:
		add(RuleEmploymentKnown, domain.SeverityBlocking, true, "")
	}

	// documents_present (blocking)
	if len(docs) > 0 {
		add(RuleDocumentsPresent, domain.SeverityBlocking, true, "")
	} else {
		add(RuleDocumentsPresent, domain.SeverityBlocking, false, "no documents uploaded")
	}

	// Advisory field checks.
	add(RuleFullNamePresent, domain.SeverityAdvisory, len(strings.TrimSpace(app.FullName)) >= 3,
		"full name is missing or too short")
	add(RuleAddressPresent, domain.SeverityAdvisory, len(strings.TrimSpace(app.Address)) >= 3,
		"address is missing or too short")

	// Advisory income checks.
	if app.NetMonthlyIncome == nil {
		add(RuleIncomeProvided, domain.SeverityAdvisory, false, "net monthly income not declared")
		add(RuleIncomeMeetsMinimum, domain.SeverityAdvisory, true, "")
	} else {
		add(RuleIncomeProvided, domain.SeverityAdvisory, true, "")
		if *app.NetMonthlyIncome >= 0 && *app.NetMonthlyIncome < rules.MinMonthlyIncome {
			add(RuleIncomeMeetsMinimum, domain.SeverityAdvisory, false,
				fmt.Sprintf("income %.2f is below the program minimum %.2f", *app.NetMonthlyIncome, rules.MinMonthlyIncome))
		} else {
			add(RuleIncomeMeetsMinimum, domain.SeverityAdvisory, true, "")
		}
	}

	// obligations_ratio_in_range: only evaluated when provided.
	if r := app.CreditObligationsRatio; r != nil && (*r < 0 || *r > 1) {
		add(RuleObligationsInRange, domain.SeverityAdvisory, false,
			fmt.Sprintf("obligations ratio %.2f must be within [0,1]", *r))
	} else {
		add(RuleObligationsInRange, domain.SeverityAdvisory, true, "")
	}

	// Document evidence checks over extracted text.
	add(RuleBankStatement, domain.SeverityAdvisory, docsHaveKeyword(docs, "statement", "bank"),
		"no bank statement found among uploaded documents")
	add(RuleIncomeProof, domain.SeverityAdvisory, docsHaveKeyword(docs, "salary", "payslip", "income"),
		"no income proof (salary slip / payslip) found among uploaded documents")

	// Successful findings carry no detail text.
	for i := range v.Findings {
		if v.Findings[i].Passed {
			v.Findings[i].Detail = ""
		}
	}
	return v
}

func employmentAllowed(s domain.EmploymentStatus, allowed []domain.EmploymentStatus) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

func docsHaveKeyword(docs []*domain.Document, keywords ...string) bool {
	for _, d := range docs {
		text := strings.ToLower(d.ContentText)
		for _, k := range keywords {
			if strings.Contains(text, k) {
				return true
			}
		}
	}
	return false
}
