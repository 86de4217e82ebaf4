package services

import (
	"context"
	"testing"
	"time"

	"github.com/soaringjerry/surveystats/internal/models"
)

func newTestGeoService() (*GeoService, *stubStatsStore) {
	store := fixtureStore()
	svc := NewGeoService(store)
	svc.now = func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestListCountriesExcludesCountriesWithoutCommunities(t *testing.T) {
	svc, _ := newTestGeoService()
	countries, err := svc.ListCountries(context.Background())
	if err != nil {
		t.Fatalf("ListCountries error: %v", err)
	}
	if len(countries) != 1 {
		t.Fatalf("expected only Kenya, got %+v", countries)
	}
	ke := countries[0]
	if ke.Code != "KE" || ke.Respondents != 4 || ke.Latitude != -1.28 {
		t.Fatalf("unexpected summary: %+v", ke)
	}
}

func TestRespondentCounts(t *testing.T) {
	svc, _ := newTestGeoService()
	ctx := context.Background()
	if n, err := svc.CountryRespondents(ctx, 1); err != nil || n != 4 {
		t.Fatalf("Kenya respondents = %d, %v; want 4", n, err)
	}
	if n, err := svc.CountryRespondents(ctx, 2); err != nil || n != 0 {
		t.Fatalf("Ghana respondents = %d, %v; want 0", n, err)
	}
	if n, err := svc.CommunityRespondents(ctx, 11); err != nil || n != 1 {
		t.Fatalf("Mombasa respondents = %d, %v; want 1", n, err)
	}
}

func TestCountryDetail(t *testing.T) {
	svc, _ := newTestGeoService()
	detail, err := svc.CountryDetail(context.Background(), "KE")
	if err != nil {
		t.Fatalf("CountryDetail error: %v", err)
	}
	if detail.Name != "Kenya" || detail.Respondents != 4 || detail.Regions != 2 {
		t.Fatalf("unexpected detail: %+v", detail.CountrySummary)
	}
	if detail.LastResponseDate != "March 07, 2024" {
		t.Fatalf("last response = %q", detail.LastResponseDate)
	}
	if detail.GenderRatio["Female"] != 50 || detail.GenderRatio["Male"] != 25 {
		t.Fatalf("unexpected gender ratio: %v", detail.GenderRatio)
	}
	if len(detail.Communities) != 2 {
		t.Fatalf("expected 2 regions, got %+v", detail.Communities)
	}
	nairobi, mombasa := detail.Communities[0], detail.Communities[1]
	if nairobi.Region != "Nairobi" || nairobi.Responses != 2 {
		t.Fatalf("unexpected Nairobi breakdown: %+v", nairobi)
	}
	if mombasa.Region != "Mombasa" || mombasa.Responses != 1 {
		t.Fatalf("unexpected Mombasa breakdown: %+v", mombasa)
	}
	if len(detail.SurveyInfo) != 2 || detail.SurveyInfo[0].ResponseRate != 75 {
		t.Fatalf("unexpected survey info: %+v", detail.SurveyInfo)
	}
}

func TestCountryDetailWithoutResponses(t *testing.T) {
	svc, _ := newTestGeoService()
	detail, err := svc.CountryDetail(context.Background(), "GH")
	if err != nil {
		t.Fatalf("CountryDetail error: %v", err)
	}
	if detail.LastResponseDate != NoResponses || detail.Respondents != 0 || detail.Regions != 0 {
		t.Fatalf("unexpected detail: %+v", detail)
	}
	for _, s := range detail.AgeDistribution {
		if s.Percentage != 0 {
			t.Fatalf("expected zero age shares, got %+v", detail.AgeDistribution)
		}
	}
}

func TestCountryDetailNotFound(t *testing.T) {
	svc, _ := newTestGeoService()
	_, err := svc.CountryDetail(context.Background(), "ZZ")
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorNotFound || se.Message != "Country not found" {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRegionBreakdownCountsDistinctPersonSurveyPairs(t *testing.T) {
	store := fixtureStore()
	comms, _ := store.ListCommunitiesByCountry(context.Background(), 1)
	people, _ := store.ListPeopleByCommunities(context.Background(), []int64{10, 11})
	// person 100 answered two questions of survey 1: one pair.
	got := regionBreakdown(comms, people, store.responses)
	if got[0].Responses != 2 {
		t.Fatalf("Nairobi pairs = %d, want 2", got[0].Responses)
	}
}

func TestRespondentCountAgreesAcrossListingAndDetail(t *testing.T) {
	svc, store := newTestGeoService()
	ctx := context.Background()
	// a person outside every community must not be counted anywhere
	store.people = append(store.people, &models.Person{ID: 104, Gender: "Male"})

	countries, err := svc.ListCountries(ctx)
	if err != nil {
		t.Fatalf("ListCountries error: %v", err)
	}
	detail, err := svc.CountryDetail(ctx, "KE")
	if err != nil {
		t.Fatalf("CountryDetail error: %v", err)
	}
	direct, err := svc.CountryRespondents(ctx, 1)
	if err != nil {
		t.Fatalf("CountryRespondents error: %v", err)
	}
	if countries[0].Respondents != 4 || detail.Respondents != 4 || direct != 4 {
		t.Fatalf("respondents: listing=%d detail=%d direct=%d, want 4", countries[0].Respondents, detail.Respondents, direct)
	}
}

func TestRespondentCountHelper(t *testing.T) {
	per := peoplePerCommunity(fixtureStore().people)
	if got := respondentCount([]int64{10, 11}, per); got != 4 {
		t.Fatalf("Kenya = %d, want 4", got)
	}
	if got := respondentCount(nil, per); got != 0 {
		t.Fatalf("no communities = %d, want 0", got)
	}
	if got := respondentCount([]int64{12}, per); got != 0 {
		t.Fatalf("empty community = %d, want 0", got)
	}
}
