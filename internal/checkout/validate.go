package checkout

import (
	"fmt"
	"regexp"
	"strings"
)

// emailPattern is deliberately loose: one @, no whitespace, a dot in
// the domain. Real deliverability is the mail system's problem.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Required form fields per step. Step 3's requirements depend on the
// chosen payment method and are handled in ValidateStep directly.
var (
	stepOneFields = []string{"first_name", "last_name", "email", "phone"}
	stepTwoFields = []string{"street_address", "suburb", "state", "postcode", "delivery_date"}
	cardFields    = []string{"card_name", "card_number", "card_expiry", "card_cvv"}
)

// ValidateStep checks that the form data satisfies the given step's
// requirements and returns a problem message per missing or invalid
// field. An empty result means the step may be advanced past (or, for
// the last step, submitted).
func ValidateStep(step int, form map[string]string) []string {
	var problems []string
	missing := func(fields []string) {
		for _, f := range fields {
			if strings.TrimSpace(form[f]) == "" {
				problems = append(problems, fmt.Sprintf("%s is required", f))
			}
		}
	}
	switch step {
	case 1:
		missing(stepOneFields)
		if email := strings.TrimSpace(form["email"]); email != "" && !emailPattern.MatchString(email) {
			problems = append(problems, "email is invalid")
		}
	case 2:
		missing(stepTwoFields)
	case 3:
		if strings.TrimSpace(form["payment_method"]) == "" {
			problems = append(problems, "payment_method is required")
			break
		}
		if form["payment_method"] == "card" {
			missing(cardFields)
		}
	}
	return problems
}

// ValidateSubmit runs every step's validation; final submission must
// satisfy the whole wizard, not just the last step.
func ValidateSubmit(form map[string]string) []string {
	var problems []string
	for step := FirstStep; step <= LastStep; step++ {
		problems = append(problems, ValidateStep(step, form)...)
	}
	return problems
}

// CardLast4 returns the last four digits of a card number, ignoring
// spacing. Empty input yields empty output; nothing beyond the suffix
// is ever retained.
func CardLast4(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}
