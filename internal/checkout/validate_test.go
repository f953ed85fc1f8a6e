package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tanvtse183061-eng/dealer-checkout/internal/dealer"
)

func TestValidateCustomerEmail(t *testing.T) {
	base := dealer.CustomerForm{
		FirstName: "An",
		LastName:  "Nguyen",
		Phone:     "0901234567",
	}

	valid := []string{
		"an@test.com",
		"an.nguyen+tag@sub.example.vn",
	}
	for _, email := range valid {
		form := base
		form.Email = email
		assert.NoError(t, validateCustomer(form), email)
	}

	invalid := []string{
		"abc",
		"an@",
		"@test.com",
		"an@test",
	}
	for _, email := range invalid {
		form := base
		form.Email = email
		err := validateCustomer(form)
		var valErr *ValidationError
		assert.ErrorAs(t, err, &valErr, email)
	}
}

func TestValidateCustomerFirstFailingFieldWins(t *testing.T) {
	err := validateCustomer(dealer.CustomerForm{Email: "bad"})
	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
	assert.Equal(t, "firstName", valErr.Field)
}
