package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/datacite/datafiles-service/models"
)

func TestLandingPagePrefersDOI(t *testing.T) {
	d := models.Datafile{Slug: "covid-19-dump", DOI: "10.5438/example"}
	assert.Equal(t, "https://doi.org/10.5438/example", LandingPage(d, "http://example.test"))
}

func TestLandingPageFallsBackToDetailPage(t *testing.T) {
	d := models.Datafile{Slug: "covid-19-dump"}
	assert.Equal(t, "http://example.test/datafiles/covid-19-dump", LandingPage(d, "http://example.test"))
}
