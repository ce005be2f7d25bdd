package controllers

import (
	"github.com/datacite/datafiles-service/models"
)

// LandingPage derives the page a datafile should link out to: the DOI
// resolver when a DOI is registered, otherwise the file's own detail
// page. Kept as a pure function so the entity stays persistence-only.
func LandingPage(d models.Datafile, baseURL string) string {
	if d.DOI != "" {
		return "https://doi.org/" + d.DOI
	}
	return baseURL + "/datafiles/" + d.Slug
}
