package services

import (
	"context"

	"github.com/soaringjerry/surveystats/internal/models"
)

// StatsStore is the read-only persistence surface the statistics services
// depend on. Lookups of a single record return (nil, nil) when it does not exist.
type StatsStore interface {
	GetCommunity(ctx context.Context, id int64) (*models.Community, error)
	ListCommunities(ctx context.Context) ([]*models.Community, error)
	ListCommunitiesByCountry(ctx context.Context, countryID int64) ([]*models.Community, error)

	GetCountry(ctx context.Context, id int64) (*models.Country, error)
	GetCountryByCode(ctx context.Context, code string) (*models.Country, error)
	ListCountries(ctx context.Context) ([]*models.Country, error)

	ListPeople(ctx context.Context) ([]*models.Person, error)
	ListPeopleByCommunities(ctx context.Context, communityIDs []int64) ([]*models.Person, error)

	ListSurveys(ctx context.Context) ([]*models.Survey, error)
	ListSurveyQuestions(ctx context.Context, surveyID int64) ([]*models.SurveyQuestion, error)
	GetQuestion(ctx context.Context, id int64) (*models.Question, error)
	CountQuestionOptions(ctx context.Context, questionID int64) (int, error)
	GetOptionsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Option, error)

	ListResponsesBySurveyQuestion(ctx context.Context, surveyQuestionID int64) ([]*models.Response, error)
	ListResponsesByPeople(ctx context.Context, personIDs []int64) ([]*models.Response, error)
	ListResponses(ctx context.Context) ([]*models.Response, error)
}

// AnswerCount is one row of a question's answer breakdown.
type AnswerCount struct {
	Answer string `json:"answer"`
	Total  int    `json:"total"`
}

// AgeShare is the share of a population falling into one age band.
type AgeShare struct {
	AgeGroup   AgeBand `json:"ageGroup"`
	Percentage float64 `json:"percentage"`
}

type QuestionReport struct {
	QuestionID   int64         `json:"questionid"`
	Question     string        `json:"question"`
	QuestionType string        `json:"questionType"`
	ChartType    ChartType     `json:"chartType"`
	Answers      []AnswerCount `json:"answers"`
	Error        string        `json:"error,omitempty"`
}

type SurveyReport struct {
	SurveyID     int64            `json:"surveyid"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	ResponseRate float64          `json:"responseRate"`
	Responses    []QuestionReport `json:"responses"`
}

type CommunityInfo struct {
	ID               int64              `json:"id"`
	City             string             `json:"city"`
	Country          *string            `json:"country"`
	Respondents      int                `json:"respondents"`
	LastResponseDate *string            `json:"lastResponseDate"`
	GenderRatio      map[string]float64 `json:"genderRatio"`
	AgeDistribution  []AgeShare         `json:"ageDistribution"`
}

type CommunityReport struct {
	CommunityInfo CommunityInfo  `json:"communityInfo"`
	SurveyInfo    []SurveyReport `json:"surveyInfo"`
}

type CommunitySummary struct {
	ID      int64   `json:"id"`
	Region  string  `json:"region"`
	Country *string `json:"country"`
}

type GlobalStats struct {
	TotalResponses   int            `json:"totalResponses"`
	TotalRespondents int            `json:"totalRespondents"`
	CountryCount     int            `json:"countryCount"`
	AgeDistribution  []AgeShare     `json:"ageDistribution"`
	SurveyInfo       []SurveyReport `json:"surveyInfo"`
}

type CountrySummary struct {
	ID          int64   `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Respondents int     `json:"respondents"`
}

type RegionSummary struct {
	ID        int64  `json:"id"`
	Region    string `json:"region"`
	Responses int    `json:"responses"`
}

type CountryDetail struct {
	CountrySummary
	Regions          int                `json:"regions"`
	LastResponseDate string             `json:"lastResponseDate"`
	GenderRatio      map[string]float64 `json:"genderRatio"`
	AgeDistribution  []AgeShare         `json:"ageDistribution"`
	Communities      []RegionSummary    `json:"communities"`
	SurveyInfo       []SurveyReport     `json:"surveyInfo"`
}
