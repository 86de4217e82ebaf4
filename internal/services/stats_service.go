package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// StatsService answers the community and global statistics queries.
type StatsService struct {
	store   StatsStore
	reports *ReportService
	now     func() time.Time
}

func NewStatsService(store StatsStore) *StatsService {
	return &StatsService{
		store:   store,
		reports: NewReportService(store),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CommunityReport returns demographics and survey breakdowns of one community.
func (s *StatsService) CommunityReport(ctx context.Context, id int64) (*CommunityReport, error) {
	if s.store == nil {
		return nil, errors.New("stats service store is nil")
	}
	community, err := s.store.GetCommunity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get community %d: %w", id, err)
	}
	if community == nil {
		return nil, NewNotFoundError(MsgCommunityNotFound)
	}
	country, err := s.countryName(ctx, community.CountryID)
	if err != nil {
		return nil, err
	}
	people, err := s.store.ListPeopleByCommunities(ctx, []int64{community.ID})
	if err != nil {
		return nil, fmt.Errorf("list people of community %d: %w", community.ID, err)
	}
	pop := NewPopulation(people)
	responses, err := s.store.ListResponsesByPeople(ctx, pop.IDs())
	if err != nil {
		return nil, fmt.Errorf("list responses of community %d: %w", community.ID, err)
	}
	surveys, err := s.reports.BuildSurveyReports(ctx, pop)
	if err != nil {
		return nil, err
	}

	var lastResponse *string
	if last := LatestResponse(responses); last != nil {
		v := last.UTC().Format(time.RFC3339)
		lastResponse = &v
	}
	return &CommunityReport{
		CommunityInfo: CommunityInfo{
			ID:               community.ID,
			City:             community.City,
			Country:          country,
			Respondents:      pop.Size(),
			LastResponseDate: lastResponse,
			GenderRatio:      GenderDistribution(pop.People),
			AgeDistribution:  AgeDistribution(pop.People, s.now()),
		},
		SurveyInfo: surveys,
	}, nil
}

// ListCommunities lists every community with its country name, ordered by id.
func (s *StatsService) ListCommunities(ctx context.Context) ([]CommunitySummary, error) {
	if s.store == nil {
		return nil, errors.New("stats service store is nil")
	}
	comms, err := s.store.ListCommunities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	names, err := s.countryNames(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CommunitySummary, 0, len(comms))
	for _, c := range comms {
		if c == nil {
			continue
		}
		cs := CommunitySummary{ID: c.ID, Region: c.City}
		if c.CountryID != nil {
			if name, ok := names[*c.CountryID]; ok {
				cs.Country = &name
			}
		}
		out = append(out, cs)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GlobalStats summarises every person and response in the system.
func (s *StatsService) GlobalStats(ctx context.Context) (*GlobalStats, error) {
	if s.store == nil {
		return nil, errors.New("stats service store is nil")
	}
	people, err := s.store.ListPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	responses, err := s.store.ListResponses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	comms, err := s.store.ListCommunities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	countries := map[int64]struct{}{}
	for _, c := range comms {
		if c != nil && c.CountryID != nil {
			countries[*c.CountryID] = struct{}{}
		}
	}
	pop := NewPopulation(people)
	surveys, err := s.reports.BuildSurveyReports(ctx, pop)
	if err != nil {
		return nil, err
	}
	return &GlobalStats{
		TotalResponses:   len(responses),
		TotalRespondents: pop.Size(),
		CountryCount:     len(countries),
		AgeDistribution:  AgeDistribution(pop.People, s.now()),
		SurveyInfo:       surveys,
	}, nil
}

func (s *StatsService) countryName(ctx context.Context, countryID *int64) (*string, error) {
	if countryID == nil {
		return nil, nil
	}
	c, err := s.store.GetCountry(ctx, *countryID)
	if err != nil {
		return nil, fmt.Errorf("get country %d: %w", *countryID, err)
	}
	if c == nil {
		return nil, nil
	}
	name := c.Name
	return &name, nil
}

func (s *StatsService) countryNames(ctx context.Context) (map[int64]string, error) {
	countries, err := s.store.ListCountries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	out := make(map[int64]string, len(countries))
	for _, c := range countries {
		if c != nil {
			out[c.ID] = c.Name
		}
	}
	return out, nil
}
