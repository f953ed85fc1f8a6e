package checkout

import (
	"regexp"
	"strings"

	"github.com/tanvtse183061-eng/dealer-checkout/internal/dealer"
)

// emailPattern deliberately mirrors the storefront's loose check: some
// non-empty local part, an @, and a dotted domain.
var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// validateCustomer checks the step-1 form locally, before any backend
// call. The first failing field wins.
func validateCustomer(f dealer.CustomerForm) error {
	if strings.TrimSpace(f.FirstName) == "" {
		return &ValidationError{Field: "firstName", Reason: "is required"}
	}
	if strings.TrimSpace(f.LastName) == "" {
		return &ValidationError{Field: "lastName", Reason: "is required"}
	}
	if strings.TrimSpace(f.Email) == "" {
		return &ValidationError{Field: "email", Reason: "is required"}
	}
	if !emailPattern.MatchString(f.Email) {
		return &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if strings.TrimSpace(f.Phone) == "" {
		return &ValidationError{Field: "phone", Reason: "is required"}
	}
	return nil
}
