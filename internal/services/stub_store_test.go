package services

import (
	"context"
	"errors"
	"time"

	"github.com/soaringjerry/surveystats/internal/models"
)

type stubStatsStore struct {
	countries       []*models.Country
	communities     []*models.Community
	people          []*models.Person
	surveys         []*models.Survey
	surveyQuestions []*models.SurveyQuestion
	questions       []*models.Question
	options         []*models.Option
	questionOptions []*models.QuestionOption
	responses       []*models.Response
	failResponses   bool
	optionLookups   int
}

func (s *stubStatsStore) GetCommunity(ctx context.Context, id int64) (*models.Community, error) {
	for _, c := range s.communities {
		if c.ID == id {
			copy := *c
			return &copy, nil
		}
	}
	return nil, nil
}

func (s *stubStatsStore) ListCommunities(ctx context.Context) ([]*models.Community, error) {
	return append([]*models.Community(nil), s.communities...), nil
}

func (s *stubStatsStore) ListCommunitiesByCountry(ctx context.Context, countryID int64) ([]*models.Community, error) {
	out := []*models.Community{}
	for _, c := range s.communities {
		if c.CountryID != nil && *c.CountryID == countryID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubStatsStore) GetCountry(ctx context.Context, id int64) (*models.Country, error) {
	for _, c := range s.countries {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (s *stubStatsStore) GetCountryByCode(ctx context.Context, code string) (*models.Country, error) {
	for _, c := range s.countries {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, nil
}

func (s *stubStatsStore) ListCountries(ctx context.Context) ([]*models.Country, error) {
	return append([]*models.Country(nil), s.countries...), nil
}

func (s *stubStatsStore) ListPeople(ctx context.Context) ([]*models.Person, error) {
	return append([]*models.Person(nil), s.people...), nil
}

func (s *stubStatsStore) ListPeopleByCommunities(ctx context.Context, communityIDs []int64) ([]*models.Person, error) {
	want := map[int64]bool{}
	for _, id := range communityIDs {
		want[id] = true
	}
	out := []*models.Person{}
	for _, p := range s.people {
		if p.CommunityID != nil && want[*p.CommunityID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubStatsStore) ListSurveys(ctx context.Context) ([]*models.Survey, error) {
	return append([]*models.Survey(nil), s.surveys...), nil
}

func (s *stubStatsStore) ListSurveyQuestions(ctx context.Context, surveyID int64) ([]*models.SurveyQuestion, error) {
	out := []*models.SurveyQuestion{}
	for _, sq := range s.surveyQuestions {
		if sq.SurveyID == surveyID {
			out = append(out, sq)
		}
	}
	return out, nil
}

func (s *stubStatsStore) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	for _, q := range s.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

func (s *stubStatsStore) CountQuestionOptions(ctx context.Context, questionID int64) (int, error) {
	n := 0
	for _, qo := range s.questionOptions {
		if qo.QuestionID == questionID {
			n++
		}
	}
	return n, nil
}

func (s *stubStatsStore) GetOptionsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Option, error) {
	s.optionLookups++
	out := map[int64]*models.Option{}
	for _, id := range ids {
		for _, o := range s.options {
			if o.ID == id {
				out[id] = o
			}
		}
	}
	return out, nil
}

func (s *stubStatsStore) ListResponsesBySurveyQuestion(ctx context.Context, surveyQuestionID int64) ([]*models.Response, error) {
	if s.failResponses {
		return nil, errors.New("boom")
	}
	out := []*models.Response{}
	for _, r := range s.responses {
		if r.SurveyQuestionID == surveyQuestionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubStatsStore) ListResponsesByPeople(ctx context.Context, personIDs []int64) ([]*models.Response, error) {
	want := map[int64]bool{}
	for _, id := range personIDs {
		want[id] = true
	}
	out := []*models.Response{}
	for _, r := range s.responses {
		if want[r.PersonID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubStatsStore) ListResponses(ctx context.Context) ([]*models.Response, error) {
	return append([]*models.Response(nil), s.responses...), nil
}

var _ StatsStore = (*stubStatsStore)(nil)

func ptr[T any](v T) *T { return &v }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// fixtureStore models two countries (one without communities), two
// communities in Kenya and one survey with a multiple choice and a text question.
func fixtureStore() *stubStatsStore {
	ts := func(day int) *time.Time {
		t := time.Date(2024, 3, day, 10, 0, 0, 0, time.UTC)
		return &t
	}
	return &stubStatsStore{
		countries: []*models.Country{
			{ID: 1, Name: "Kenya", Code: "KE", Latitude: -1.28, Longitude: 36.82},
			{ID: 2, Name: "Ghana", Code: "GH", Latitude: 5.6, Longitude: -0.19},
		},
		communities: []*models.Community{
			{ID: 10, CountryID: ptr(int64(1)), City: "Nairobi"},
			{ID: 11, CountryID: ptr(int64(1)), City: "Mombasa"},
			{ID: 12, City: "Nowhere"},
		},
		people: []*models.Person{
			{ID: 100, Gender: "Male", DateOfBirth: date(2000, 1, 1), CommunityID: ptr(int64(10))},
			{ID: 101, Gender: "Female", DateOfBirth: date(1970, 6, 15), CommunityID: ptr(int64(10))},
			{ID: 102, Gender: "Other", CommunityID: ptr(int64(10))},
			{ID: 103, Gender: "Female", DateOfBirth: date(2015, 5, 5), CommunityID: ptr(int64(11))},
		},
		surveys: []*models.Survey{
			{ID: 1, Title: "Water", Description: "Access to water"},
			{ID: 2, Title: "Empty", Description: "No questions"},
		},
		surveyQuestions: []*models.SurveyQuestion{
			{ID: 50, SurveyID: 1, QuestionID: 500},
			{ID: 51, SurveyID: 1, QuestionID: 501},
		},
		questions: []*models.Question{
			{ID: 500, Text: "Which sources do you use?", Type: models.QuestionTypeMultipleChoice},
			{ID: 501, Text: "Anything else?", Type: models.QuestionTypeTextEntry},
		},
		options: []*models.Option{
			{ID: 1, Text: "Well"}, {ID: 2, Text: "Tap"}, {ID: 3, Text: "River"},
		},
		questionOptions: []*models.QuestionOption{
			{ID: 1, QuestionID: 500, OptionID: 1},
			{ID: 2, QuestionID: 500, OptionID: 2},
			{ID: 3, QuestionID: 500, OptionID: 3},
		},
		responses: []*models.Response{
			{ID: 1, SurveyQuestionID: 50, SurveyID: 1, PersonID: 100, Data: "1,2", Timestamp: ts(1)},
			{ID: 2, SurveyQuestionID: 50, SurveyID: 1, PersonID: 101, Data: "2,3", Timestamp: ts(3)},
			{ID: 3, SurveyQuestionID: 51, SurveyID: 1, PersonID: 100, Data: "red", Timestamp: ts(2)},
			{ID: 4, SurveyQuestionID: 51, SurveyID: 1, PersonID: 103, Data: "blue", Timestamp: ts(7)},
		},
	}
}
