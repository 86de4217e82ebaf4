package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/soaringjerry/surveystats/internal/models"
)

const (
	// LastResponseLayout renders dates as "Month DD, YYYY".
	LastResponseLayout = "January 02, 2006"
	// NoResponses replaces the last response date of a scope without responses.
	NoResponses = "No responses"
)

// GeoService rolls communities up into countries.
type GeoService struct {
	store   StatsStore
	reports *ReportService
	now     func() time.Time
}

func NewGeoService(store StatsStore) *GeoService {
	return &GeoService{
		store:   store,
		reports: NewReportService(store),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CommunityRespondents counts the people of one community.
func (s *GeoService) CommunityRespondents(ctx context.Context, communityID int64) (int, error) {
	people, err := s.store.ListPeopleByCommunities(ctx, []int64{communityID})
	if err != nil {
		return 0, fmt.Errorf("list people of community %d: %w", communityID, err)
	}
	return respondentCount([]int64{communityID}, peoplePerCommunity(people)), nil
}

// CountryRespondents sums the people over every community of a country.
func (s *GeoService) CountryRespondents(ctx context.Context, countryID int64) (int, error) {
	comms, err := s.store.ListCommunitiesByCountry(ctx, countryID)
	if err != nil {
		return 0, fmt.Errorf("list communities of country %d: %w", countryID, err)
	}
	if len(comms) == 0 {
		return 0, nil
	}
	people, err := s.store.ListPeopleByCommunities(ctx, communityIDs(comms))
	if err != nil {
		return 0, fmt.Errorf("list people of country %d: %w", countryID, err)
	}
	return respondentCount(communityIDs(comms), peoplePerCommunity(people)), nil
}

func peoplePerCommunity(people []*models.Person) map[int64]int {
	out := map[int64]int{}
	for _, p := range people {
		if p != nil && p.CommunityID != nil {
			out[*p.CommunityID]++
		}
	}
	return out
}

// respondentCount sums the people living in the given communities. A scope
// without communities has no respondents.
func respondentCount(communities []int64, perCommunity map[int64]int) int {
	n := 0
	for _, id := range communities {
		n += perCommunity[id]
	}
	return n
}

// ListCountries summarises every country that has at least one community,
// ordered by name.
func (s *GeoService) ListCountries(ctx context.Context) ([]CountrySummary, error) {
	if s.store == nil {
		return nil, errors.New("geo service store is nil")
	}
	countries, err := s.store.ListCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	comms, err := s.store.ListCommunities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	people, err := s.store.ListPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	perCommunity := peoplePerCommunity(people)
	byCountry := map[int64][]int64{}
	for _, c := range comms {
		if c == nil || c.CountryID == nil {
			continue
		}
		byCountry[*c.CountryID] = append(byCountry[*c.CountryID], c.ID)
	}
	out := make([]CountrySummary, 0, len(countries))
	for _, c := range countries {
		if c == nil || len(byCountry[c.ID]) == 0 {
			continue
		}
		out = append(out, summarize(c, respondentCount(byCountry[c.ID], perCommunity)))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// CountryDetail reports demographics, regions and surveys of the country
// identified by its code.
func (s *GeoService) CountryDetail(ctx context.Context, code string) (*CountryDetail, error) {
	if s.store == nil {
		return nil, errors.New("geo service store is nil")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, NewNotFoundError(MsgCountryNotFound)
	}
	country, err := s.store.GetCountryByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("get country %q: %w", code, err)
	}
	if country == nil {
		return nil, NewNotFoundError(MsgCountryNotFound)
	}
	comms, err := s.store.ListCommunitiesByCountry(ctx, country.ID)
	if err != nil {
		return nil, fmt.Errorf("list communities of country %d: %w", country.ID, err)
	}
	var people []*models.Person
	if len(comms) > 0 {
		people, err = s.store.ListPeopleByCommunities(ctx, communityIDs(comms))
		if err != nil {
			return nil, fmt.Errorf("list people of country %d: %w", country.ID, err)
		}
	}
	pop := NewPopulation(people)
	responses, err := s.store.ListResponsesByPeople(ctx, pop.IDs())
	if err != nil {
		return nil, fmt.Errorf("list responses of country %d: %w", country.ID, err)
	}
	surveys, err := s.reports.BuildSurveyReports(ctx, pop)
	if err != nil {
		return nil, err
	}

	lastResponse := NoResponses
	if last := LatestResponse(responses); last != nil {
		lastResponse = last.Format(LastResponseLayout)
	}
	return &CountryDetail{
		CountrySummary:   summarize(country, respondentCount(communityIDs(comms), peoplePerCommunity(pop.People))),
		Regions:          len(comms),
		LastResponseDate: lastResponse,
		GenderRatio:      GenderDistribution(pop.People),
		AgeDistribution:  AgeDistribution(pop.People, s.now()),
		Communities:      regionBreakdown(comms, pop.People, responses),
		SurveyInfo:       surveys,
	}, nil
}

func summarize(c *models.Country, respondents int) CountrySummary {
	return CountrySummary{
		ID:          c.ID,
		Code:        c.Code,
		Name:        c.Name,
		Latitude:    c.Latitude,
		Longitude:   c.Longitude,
		Respondents: respondents,
	}
}

// regionBreakdown counts, per community, the distinct (person, survey) pairs
// that have at least one response.
func regionBreakdown(comms []*models.Community, people []*models.Person, responses []*models.Response) []RegionSummary {
	communityOf := make(map[int64]int64, len(people))
	for _, p := range people {
		if p != nil && p.CommunityID != nil {
			communityOf[p.ID] = *p.CommunityID
		}
	}
	type pair struct{ person, survey int64 }
	seen := map[pair]struct{}{}
	perCommunity := map[int64]int{}
	for _, r := range responses {
		if r == nil {
			continue
		}
		cid, ok := communityOf[r.PersonID]
		if !ok {
			continue
		}
		k := pair{person: r.PersonID, survey: r.SurveyID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		perCommunity[cid]++
	}
	out := make([]RegionSummary, 0, len(comms))
	for _, c := range comms {
		if c == nil {
			continue
		}
		out = append(out, RegionSummary{ID: c.ID, Region: c.City, Responses: perCommunity[c.ID]})
	}
	return out
}

// LatestResponse returns the most recent response timestamp, or nil.
func LatestResponse(responses []*models.Response) *time.Time {
	var last *time.Time
	for _, r := range responses {
		if r == nil || r.Timestamp == nil {
			continue
		}
		if last == nil || r.Timestamp.After(*last) {
			ts := *r.Timestamp
			last = &ts
		}
	}
	return last
}

func communityIDs(comms []*models.Community) []int64 {
	out := make([]int64, 0, len(comms))
	for _, c := range comms {
		if c != nil {
			out = append(out, c.ID)
		}
	}
	return out
}
