package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/soaringjerry/surveystats/internal/api"
	"github.com/soaringjerry/surveystats/internal/models"
)

// Row models for the legacy Postgres schema owned by the intake system.
// Table and column names are fixed by that schema; every column but the
// primary key is nullable there.

type countryRow struct {
	ID        int64    `gorm:"column:countryId;primaryKey"`
	Name      *string  `gorm:"column:name"`
	Code      *string  `gorm:"column:code"`
	Latitude  *float64 `gorm:"column:latitude"`
	Longitude *float64 `gorm:"column:longitude"`
}

func (countryRow) TableName() string { return "Country" }

type communityRow struct {
	ID        int64   `gorm:"column:communityId;primaryKey"`
	CountryID *int64  `gorm:"column:countryId"`
	City      *string `gorm:"column:city"`
}

func (communityRow) TableName() string { return "Community" }

type personRow struct {
	ID          int64           `gorm:"column:personId;primaryKey"`
	FirstName   *string         `gorm:"column:firstName"`
	LastName    *string         `gorm:"column:lastName"`
	DateOfBirth *datatypes.Date `gorm:"column:date_of_birth"`
	Gender      *string         `gorm:"column:gender"`
	CommunityID *int64          `gorm:"column:communityId"`
}

func (personRow) TableName() string { return "Person" }

type surveyRow struct {
	ID          int64   `gorm:"column:surveyId;primaryKey"`
	Title       *string `gorm:"column:title"`
	Description *string `gorm:"column:description"`
}

func (surveyRow) TableName() string { return "Survey" }

type surveyQuestionRow struct {
	ID         int64  `gorm:"column:surveyQuestionId;primaryKey"`
	SurveyID   *int64 `gorm:"column:surveyId"`
	QuestionID *int64 `gorm:"column:questionId"`
}

func (surveyQuestionRow) TableName() string { return "SurveyQuestion" }

type questionRow struct {
	ID       int64   `gorm:"column:questionId;primaryKey"`
	Type     *string `gorm:"column:type"`
	Question *string `gorm:"column:question"`
}

func (questionRow) TableName() string { return "Question" }

type optionRow struct {
	ID   int64   `gorm:"column:optionId;primaryKey"`
	Text *string `gorm:"column:optionText"`
}

func (optionRow) TableName() string { return "Option" }

type questionOptionRow struct {
	ID         int64  `gorm:"column:questionOptionId;primaryKey"`
	QuestionID *int64 `gorm:"column:questionId"`
	OptionID   *int64 `gorm:"column:optionId"`
}

func (questionOptionRow) TableName() string { return "QuestionOption" }

// responseRow is a Response joined with its SurveyQuestion.
type responseRow struct {
	ID                int64      `gorm:"column:responseId"`
	SurveyQuestionID  *int64     `gorm:"column:surveyQuestionId"`
	SurveyID          *int64     `gorm:"column:surveyId"`
	PersonID          *int64     `gorm:"column:personId"`
	ResponseData      *string    `gorm:"column:responseData"`
	ResponseTimestamp *time.Time `gorm:"column:responseTimestamp"`
}

// GormStore reads the legacy Postgres schema through gorm.
type GormStore struct {
	db *gorm.DB
}

// OpenPostgres connects to the legacy database described by dsn.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres dsn is required")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Warn),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return gdb, nil
}

func NewGormStore(gdb *gorm.DB) (*GormStore, error) {
	if gdb == nil {
		return nil, errors.New("nil gorm db")
	}
	return &GormStore{db: gdb}, nil
}

func (s *GormStore) logErr(prefix string, err error) error {
	if err != nil {
		log.Printf("gorm store: %s: %v", prefix, err)
		return fmt.Errorf("%s: %w", prefix, err)
	}
	return nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return s.logErr("Ping", err)
	}
	return s.logErr("Ping", sqlDB.PingContext(ctx))
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func toCountry(r countryRow) *models.Country {
	return &models.Country{ID: r.ID, Name: deref(r.Name), Code: deref(r.Code), Latitude: deref(r.Latitude), Longitude: deref(r.Longitude)}
}

func toCommunity(r communityRow) *models.Community {
	return &models.Community{ID: r.ID, CountryID: r.CountryID, City: deref(r.City)}
}

func toPerson(r personRow) *models.Person {
	p := &models.Person{
		ID:          r.ID,
		FirstName:   deref(r.FirstName),
		LastName:    deref(r.LastName),
		Gender:      deref(r.Gender),
		CommunityID: r.CommunityID,
	}
	if r.DateOfBirth != nil {
		dob := time.Time(*r.DateOfBirth)
		p.DateOfBirth = &dob
	}
	return p
}

func toResponse(r responseRow) *models.Response {
	return &models.Response{
		ID:               r.ID,
		SurveyQuestionID: deref(r.SurveyQuestionID),
		SurveyID:         deref(r.SurveyID),
		PersonID:         deref(r.PersonID),
		Data:             deref(r.ResponseData),
		Timestamp:        r.ResponseTimestamp,
	}
}

func convertAll[R, M any](rows []R, conv func(R) *M) []*M {
	out := make([]*M, 0, len(rows))
	for _, r := range rows {
		out = append(out, conv(r))
	}
	return out
}

func chunkIDs(ids []int64) [][]int64 {
	var out [][]int64
	for start := 0; start < len(ids); start += maxInArgs {
		end := start + maxInArgs
		if end > len(ids) {
			end = len(ids)
		}
		out = append(out, ids[start:end])
	}
	return out
}

// --- Geography ---

func (s *GormStore) GetCommunity(ctx context.Context, id int64) (*models.Community, error) {
	var rows []communityRow
	if err := s.db.WithContext(ctx).Where(map[string]any{"communityId": id}).Limit(1).Find(&rows).Error; err != nil {
		return nil, s.logErr("GetCommunity", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toCommunity(rows[0]), nil
}

func (s *GormStore) ListCommunities(ctx context.Context) ([]*models.Community, error) {
	var rows []communityRow
	if err := s.db.WithContext(ctx).Order(`"communityId"`).Find(&rows).Error; err != nil {
		return nil, s.logErr("ListCommunities", err)
	}
	return convertAll(rows, toCommunity), nil
}

func (s *GormStore) ListCommunitiesByCountry(ctx context.Context, countryID int64) ([]*models.Community, error) {
	var rows []communityRow
	if err := s.db.WithContext(ctx).Where(map[string]any{"countryId": countryID}).Order(`"communityId"`).Find(&rows).Error; err != nil {
		return nil, s.logErr("ListCommunitiesByCountry", err)
	}
	return convertAll(rows, toCommunity), nil
}

func (s *GormStore) GetCountry(ctx context.Context, id int64) (*models.Country, error) {
	var rows []countryRow
	if err := s.db.WithContext(ctx).Where(map[string]any{"countryId": id}).Limit(1).Find(&rows).Error; err != nil {
		return nil, s.logErr("GetCountry", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toCountry(rows[0]), nil
}

func (s *GormStore) GetCountryByCode(ctx context.Context, code string) (*models.Country, error) {
	var rows []countryRow
	if err := s.db.WithContext(ctx).Where(`UPPER("code") = UPPER(?)`, strings.TrimSpace(code)).Limit(1).Find(&rows).Error; err != nil {
		return nil, s.logErr("GetCountryByCode", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toCountry(rows[0]), nil
}

func (s *GormStore) ListCountries(ctx context.Context) ([]*models.Country, error) {
	var rows []countryRow
	if err := s.db.WithContext(ctx).Order(`"countryId"`).Find(&rows).Error; err != nil {
		return nil, s.logErr("ListCountries", err)
	}
	return convertAll(rows, toCountry), nil
}

// --- People ---

func (s *GormStore) ListPeople(ctx context.Context) ([]*models.Person, error) {
	var rows []personRow
	if err := s.db.WithContext(ctx).Order(`"personId"`).Find(&rows).Error; err != nil {
		return nil, s.logErr("ListPeople", err)
	}
	return convertAll(rows, toPerson), nil
}

func (s *GormStore) ListPeopleByCommunities(ctx context.Context, communityIDs []int64) ([]*models.Person, error) {
	out := []*models.Person{}
	for _, chunk := range chunkIDs(communityIDs) {
		var rows []personRow
		if err := s.db.WithContext(ctx).Where(`"communityId" IN ?`, chunk).Order(`"personId"`).Find(&rows).Error; err != nil {
			return nil, s.logErr("ListPeopleByCommunities", err)
		}
		out = append(out, convertAll(rows, toPerson)...)
	}
	return out, nil
}

// --- Surveys ---

func (s *GormStore) ListSurveys(ctx context.Context) ([]*models.Survey, error) {
	var rows []surveyRow
	if err := s.db.WithContext(ctx).Order(`"surveyId"`).Find(&rows).Error; err != nil {
		return nil, s.logErr("ListSurveys", err)
	}
	return convertAll(rows, func(r surveyRow) *models.Survey {
		return &models.Survey{ID: r.ID, Title: deref(r.Title), Description: deref(r.Description)}
	}), nil
}

func (s *GormStore) ListSurveyQuestions(ctx context.Context, surveyID int64) ([]*models.SurveyQuestion, error) {
	var rows []surveyQuestionRow
	if err := s.db.WithContext(ctx).Where(map[string]any{"surveyId": surveyID}).Order(`"surveyQuestionId"`).Find(&rows).Error; err != nil {
		return nil, s.logErr("ListSurveyQuestions", err)
	}
	return convertAll(rows, func(r surveyQuestionRow) *models.SurveyQuestion {
		return &models.SurveyQuestion{ID: r.ID, SurveyID: deref(r.SurveyID), QuestionID: deref(r.QuestionID)}
	}), nil
}

func (s *GormStore) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	var rows []questionRow
	if err := s.db.WithContext(ctx).Where(map[string]any{"questionId": id}).Limit(1).Find(&rows).Error; err != nil {
		return nil, s.logErr("GetQuestion", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &models.Question{ID: rows[0].ID, Text: deref(rows[0].Question), Type: deref(rows[0].Type)}, nil
}

func (s *GormStore) CountQuestionOptions(ctx context.Context, questionID int64) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&questionOptionRow{}).Where(map[string]any{"questionId": questionID}).Count(&n).Error; err != nil {
		return 0, s.logErr("CountQuestionOptions", err)
	}
	return int(n), nil
}

func (s *GormStore) GetOptionsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Option, error) {
	out := make(map[int64]*models.Option, len(ids))
	for _, chunk := range chunkIDs(ids) {
		var rows []optionRow
		if err := s.db.WithContext(ctx).Where(`"optionId" IN ?`, chunk).Find(&rows).Error; err != nil {
			return nil, s.logErr("GetOptionsByIDs", err)
		}
		for _, r := range rows {
			out[r.ID] = &models.Option{ID: r.ID, Text: deref(r.Text)}
		}
	}
	return out, nil
}

// --- Responses ---

func (s *GormStore) responses(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table(`"Response" AS r`).
		Select(`r."responseId", r."surveyQuestionId", sq."surveyId", r."personId", r."responseData", r."responseTimestamp"`).
		Joins(`LEFT JOIN "SurveyQuestion" AS sq ON sq."surveyQuestionId" = r."surveyQuestionId"`).
		Order(`r."responseId"`)
}

func (s *GormStore) ListResponsesBySurveyQuestion(ctx context.Context, surveyQuestionID int64) ([]*models.Response, error) {
	var rows []responseRow
	if err := s.responses(ctx).Where(`r."surveyQuestionId" = ?`, surveyQuestionID).Scan(&rows).Error; err != nil {
		return nil, s.logErr("ListResponsesBySurveyQuestion", err)
	}
	return convertAll(rows, toResponse), nil
}

func (s *GormStore) ListResponsesByPeople(ctx context.Context, personIDs []int64) ([]*models.Response, error) {
	out := []*models.Response{}
	for _, chunk := range chunkIDs(personIDs) {
		var rows []responseRow
		if err := s.responses(ctx).Where(`r."personId" IN ?`, chunk).Scan(&rows).Error; err != nil {
			return nil, s.logErr("ListResponsesByPeople", err)
		}
		out = append(out, convertAll(rows, toResponse)...)
	}
	return out, nil
}

func (s *GormStore) ListResponses(ctx context.Context) ([]*models.Response, error) {
	var rows []responseRow
	if err := s.responses(ctx).Scan(&rows).Error; err != nil {
		return nil, s.logErr("ListResponses", err)
	}
	return convertAll(rows, toResponse), nil
}

var _ api.Store = (*GormStore)(nil)
