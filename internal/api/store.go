package api

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/soaringjerry/surveystats/internal/models"
)

// Snapshot is a JSON dump of every table, used for fixtures and for seeding
// a fresh SQLite database.
type Snapshot struct {
	Countries       []*models.Country        `json:"countries"`
	Communities     []*models.Community      `json:"communities"`
	People          []*models.Person         `json:"people"`
	Surveys         []*models.Survey         `json:"surveys"`
	Questions       []*models.Question       `json:"questions"`
	Options         []*models.Option         `json:"options"`
	QuestionOptions []*models.QuestionOption `json:"question_options"`
	SurveyQuestions []*models.SurveyQuestion `json:"survey_questions"`
	Responses       []*models.Response       `json:"responses"`
}

// MemoryStore serves a snapshot from memory. It is never mutated after
// construction, so concurrent readers need no locking.
type MemoryStore struct {
	snap            *Snapshot
	countries       map[int64]*models.Country
	countriesByCode map[string]*models.Country
	communities     map[int64]*models.Community
	questions       map[int64]*models.Question
	options         map[int64]*models.Option
	optionCounts    map[int64]int
	surveyOf        map[int64]int64
}

// NewMemoryStore indexes snap. Response survey ids are resolved through the
// survey question links.
func NewMemoryStore(snap *Snapshot) *MemoryStore {
	if snap == nil {
		snap = &Snapshot{}
	}
	s := &MemoryStore{
		snap:            snap,
		countries:       map[int64]*models.Country{},
		countriesByCode: map[string]*models.Country{},
		communities:     map[int64]*models.Community{},
		questions:       map[int64]*models.Question{},
		options:         map[int64]*models.Option{},
		optionCounts:    map[int64]int{},
		surveyOf:        map[int64]int64{},
	}
	for _, c := range snap.Countries {
		s.countries[c.ID] = c
		s.countriesByCode[strings.ToUpper(c.Code)] = c
	}
	for _, c := range snap.Communities {
		s.communities[c.ID] = c
	}
	for _, q := range snap.Questions {
		s.questions[q.ID] = q
	}
	for _, o := range snap.Options {
		s.options[o.ID] = o
	}
	for _, qo := range snap.QuestionOptions {
		s.optionCounts[qo.QuestionID]++
	}
	for _, sq := range snap.SurveyQuestions {
		s.surveyOf[sq.ID] = sq.SurveyID
	}
	for _, r := range snap.Responses {
		if sid, ok := s.surveyOf[r.SurveyQuestionID]; ok {
			r.SurveyID = sid
		}
	}
	sortByID(snap)
	return s
}

// NewMemoryStoreFromPath loads a JSON snapshot from path.
func NewMemoryStoreFromPath(path string) (*MemoryStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, os.ErrNotExist
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return NewMemoryStore(&snap), nil
}

// MemoryStoreSnapshot exposes the snapshot backing s.
func MemoryStoreSnapshot(s *MemoryStore) *Snapshot {
	if s == nil {
		return nil
	}
	return s.snap
}

func sortByID(snap *Snapshot) {
	sort.SliceStable(snap.Countries, func(i, j int) bool { return snap.Countries[i].ID < snap.Countries[j].ID })
	sort.SliceStable(snap.Communities, func(i, j int) bool { return snap.Communities[i].ID < snap.Communities[j].ID })
	sort.SliceStable(snap.People, func(i, j int) bool { return snap.People[i].ID < snap.People[j].ID })
	sort.SliceStable(snap.Surveys, func(i, j int) bool { return snap.Surveys[i].ID < snap.Surveys[j].ID })
	sort.SliceStable(snap.SurveyQuestions, func(i, j int) bool { return snap.SurveyQuestions[i].ID < snap.SurveyQuestions[j].ID })
	sort.SliceStable(snap.Responses, func(i, j int) bool { return snap.Responses[i].ID < snap.Responses[j].ID })
}

func (s *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemoryStore) GetCommunity(ctx context.Context, id int64) (*models.Community, error) {
	return s.communities[id], nil
}

func (s *MemoryStore) ListCommunities(ctx context.Context) ([]*models.Community, error) {
	return append([]*models.Community(nil), s.snap.Communities...), nil
}

func (s *MemoryStore) ListCommunitiesByCountry(ctx context.Context, countryID int64) ([]*models.Community, error) {
	out := []*models.Community{}
	for _, c := range s.snap.Communities {
		if c.CountryID != nil && *c.CountryID == countryID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetCountry(ctx context.Context, id int64) (*models.Country, error) {
	return s.countries[id], nil
}

func (s *MemoryStore) GetCountryByCode(ctx context.Context, code string) (*models.Country, error) {
	return s.countriesByCode[strings.ToUpper(strings.TrimSpace(code))], nil
}

func (s *MemoryStore) ListCountries(ctx context.Context) ([]*models.Country, error) {
	return append([]*models.Country(nil), s.snap.Countries...), nil
}

func (s *MemoryStore) ListPeople(ctx context.Context) ([]*models.Person, error) {
	return append([]*models.Person(nil), s.snap.People...), nil
}

func (s *MemoryStore) ListPeopleByCommunities(ctx context.Context, communityIDs []int64) ([]*models.Person, error) {
	want := idSet(communityIDs)
	out := []*models.Person{}
	for _, p := range s.snap.People {
		if p.CommunityID == nil {
			continue
		}
		if _, ok := want[*p.CommunityID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListSurveys(ctx context.Context) ([]*models.Survey, error) {
	return append([]*models.Survey(nil), s.snap.Surveys...), nil
}

func (s *MemoryStore) ListSurveyQuestions(ctx context.Context, surveyID int64) ([]*models.SurveyQuestion, error) {
	out := []*models.SurveyQuestion{}
	for _, sq := range s.snap.SurveyQuestions {
		if sq.SurveyID == surveyID {
			out = append(out, sq)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	return s.questions[id], nil
}

func (s *MemoryStore) CountQuestionOptions(ctx context.Context, questionID int64) (int, error) {
	return s.optionCounts[questionID], nil
}

func (s *MemoryStore) GetOptionsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Option, error) {
	out := make(map[int64]*models.Option, len(ids))
	for _, id := range ids {
		if o, ok := s.options[id]; ok {
			out[id] = o
		}
	}
	return out, nil
}

func (s *MemoryStore) ListResponsesBySurveyQuestion(ctx context.Context, surveyQuestionID int64) ([]*models.Response, error) {
	out := []*models.Response{}
	for _, r := range s.snap.Responses {
		if r.SurveyQuestionID == surveyQuestionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListResponsesByPeople(ctx context.Context, personIDs []int64) ([]*models.Response, error) {
	want := idSet(personIDs)
	out := []*models.Response{}
	for _, r := range s.snap.Responses {
		if _, ok := want[r.PersonID]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListResponses(ctx context.Context) ([]*models.Response, error) {
	return append([]*models.Response(nil), s.snap.Responses...), nil
}

func idSet(ids []int64) map[int64]struct{} {
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
