package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validForm() AccessRequestForm {
	return AccessRequestForm{
		Email:        "a@example.org",
		Name:         "A. Researcher",
		Organisation: "Example University",
		Contact:      true,
		PrimaryUse:   []string{"research"},
	}
}

func TestValidateAcceptsCompleteForm(t *testing.T) {
	form := validForm()
	assert.Empty(t, form.Validate())
}

func TestValidateRequiredFields(t *testing.T) {
	cases := []struct {
		name  string
		mod   func(*AccessRequestForm)
		field string
	}{
		{"missing email", func(f *AccessRequestForm) { f.Email = "" }, "email"},
		{"bad email", func(f *AccessRequestForm) { f.Email = "not-an-address" }, "email"},
		{"missing name", func(f *AccessRequestForm) { f.Name = "  " }, "name"},
		{"missing organisation", func(f *AccessRequestForm) { f.Organisation = "" }, "organisation"},
		{"no planned use", func(f *AccessRequestForm) { f.PrimaryUse = nil }, "primary_use"},
		{"unknown planned use", func(f *AccessRequestForm) { f.PrimaryUse = []string{"hacking"} }, "primary_use"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := validForm()
			tc.mod(&form)
			errs := form.Validate()
			assert.Contains(t, errs, tc.field)
		})
	}
}

func TestValidateOtherRequiresDetail(t *testing.T) {
	form := validForm()
	form.PrimaryUse = []string{"research", "other"}
	form.OtherUse = ""
	errs := form.Validate()
	assert.Contains(t, errs, "primary_use")

	form.OtherUse = "benchmarking internal tooling"
	assert.Empty(t, form.Validate())
}
