package controllers

import (
	"net/mail"
	"strings"
)

// UseChoice is one planned-use option offered on the request form.
type UseChoice struct {
	Value string
	Label string
}

// UseChoices lists the planned-use options in display order.
var UseChoices = []UseChoice{
	{"research", "Analyze the dataset, identify trends, build new models."},
	{"teaching", "Prepare lessons, create assignments, teach data analysis skills."},
	{"software", "Build tools, create applications, integrate data sources."},
	{"reporting", "Checking on external use of data."},
	{"notsure", "I'm not sure yet."},
	{"other", "Other (please specify below)."},
}

// AccessRequestForm binds the access request submission.
type AccessRequestForm struct {
	Email          string   `form:"email"`
	Name           string   `form:"name"`
	Organisation   string   `form:"organisation"`
	Contact        bool     `form:"contact"`
	PrimaryUse     []string `form:"primary_use"`
	OtherUse       string   `form:"other_use"`
	AdditionalInfo string   `form:"additional_info"`
}

// Validate checks the submission and returns field errors keyed by field
// name. An empty map means the form is acceptable. Nothing is persisted
// when any error is present.
func (f *AccessRequestForm) Validate() map[string]string {
	errs := map[string]string{}

	f.Email = strings.TrimSpace(f.Email)
	f.Name = strings.TrimSpace(f.Name)
	f.Organisation = strings.TrimSpace(f.Organisation)
	f.OtherUse = strings.TrimSpace(f.OtherUse)

	if f.Email == "" {
		errs["email"] = "This field is required."
	} else if _, err := mail.ParseAddress(f.Email); err != nil {
		errs["email"] = "Please enter a valid email address."
	}
	if f.Name == "" {
		errs["name"] = "This field is required."
	}
	if f.Organisation == "" {
		errs["organisation"] = "This field is required."
	}

	if len(f.PrimaryUse) == 0 {
		errs["primary_use"] = "At least one option must be selected."
	} else {
		for _, use := range f.PrimaryUse {
			if !validUseChoice(use) {
				errs["primary_use"] = "Not a valid choice."
				break
			}
		}
	}
	if hasUse(f.PrimaryUse, "other") && f.OtherUse == "" {
		errs["primary_use"] = "Please specify your other use."
	}

	return errs
}

func validUseChoice(value string) bool {
	for _, c := range UseChoices {
		if c.Value == value {
			return true
		}
	}
	return false
}

func hasUse(uses []string, value string) bool {
	for _, u := range uses {
		if u == value {
			return true
		}
	}
	return false
}
