package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/soaringjerry/surveystats/internal/api"
	"github.com/soaringjerry/surveystats/internal/models"
)

// maxInArgs bounds the number of bind parameters per IN (...) query.
const maxInArgs = 500

// SQLiteStore reads the survey schema through database/sql.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

func (s *SQLiteStore) logErr(prefix string, err error) error {
	if err != nil {
		log.Printf("sqlite store: %s: %v", prefix, err)
		return fmt.Errorf("%s: %w", prefix, err)
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.logErr("Ping", s.db.PingContext(ctx))
}

const (
	countryColumns   = `"countryId", "name", "code", "latitude", "longitude"`
	communityColumns = `"communityId", "countryId", COALESCE("city", '')`
	personColumns    = `"personId", COALESCE("firstName", ''), COALESCE("lastName", ''), "date_of_birth", COALESCE("gender", ''), "communityId"`
	responseSelect   = `SELECT r."responseId", COALESCE(r."surveyQuestionId", 0), COALESCE(sq."surveyId", 0), COALESCE(r."personId", 0),
      COALESCE(r."responseData", ''), r."responseTimestamp"
      FROM "Response" r LEFT JOIN "SurveyQuestion" sq ON sq."surveyQuestionId" = r."surveyQuestionId"`
)

type scanner interface {
	Scan(dest ...any) error
}

func scanCountry(row scanner) (*models.Country, error) {
	var c models.Country
	if err := row.Scan(&c.ID, &c.Name, &c.Code, &c.Latitude, &c.Longitude); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCommunity(row scanner) (*models.Community, error) {
	var c models.Community
	var country sql.NullInt64
	if err := row.Scan(&c.ID, &country, &c.City); err != nil {
		return nil, err
	}
	if country.Valid {
		v := country.Int64
		c.CountryID = &v
	}
	return &c, nil
}

func scanPerson(row scanner) (*models.Person, error) {
	var p models.Person
	var dob sql.NullTime
	var community sql.NullInt64
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &dob, &p.Gender, &community); err != nil {
		return nil, err
	}
	if dob.Valid {
		v := dob.Time
		p.DateOfBirth = &v
	}
	if community.Valid {
		v := community.Int64
		p.CommunityID = &v
	}
	return &p, nil
}

func scanResponse(row scanner) (*models.Response, error) {
	var r models.Response
	var ts sql.NullTime
	if err := row.Scan(&r.ID, &r.SurveyQuestionID, &r.SurveyID, &r.PersonID, &r.Data, &ts); err != nil {
		return nil, err
	}
	if ts.Valid {
		v := ts.Time
		r.Timestamp = &v
	}
	return &r, nil
}

// queryAll runs query and scans every row with scan.
func queryAll[T any](ctx context.Context, db *sql.DB, scan func(scanner) (*T, error), query string, args ...any) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Printf("sqlite store: rows.Close: %v", cerr)
		}
	}()
	out := []*T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// queryIn runs query once per chunk of ids, substituting "(?)" with a
// placeholder list, and concatenates the results.
func queryIn[T any](ctx context.Context, db *sql.DB, scan func(scanner) (*T, error), query string, ids []int64) ([]*T, error) {
	out := []*T{}
	for start := 0; start < len(ids); start += maxInArgs {
		end := start + maxInArgs
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		q := strings.Replace(query, "(?)", "("+placeholders(len(chunk))+")", 1)
		rows, err := queryAll(ctx, db, scan, q, args...)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func firstOrNil[T any](list []*T, err error) (*T, error) {
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

// --- Geography ---

func (s *SQLiteStore) GetCommunity(ctx context.Context, id int64) (*models.Community, error) {
	c, err := firstOrNil(queryAll(ctx, s.db, scanCommunity, `SELECT `+communityColumns+` FROM "Community" WHERE "communityId" = ?`, id))
	return c, s.logErr("GetCommunity", err)
}

func (s *SQLiteStore) ListCommunities(ctx context.Context) ([]*models.Community, error) {
	list, err := queryAll(ctx, s.db, scanCommunity, `SELECT `+communityColumns+` FROM "Community" ORDER BY "communityId"`)
	return list, s.logErr("ListCommunities", err)
}

func (s *SQLiteStore) ListCommunitiesByCountry(ctx context.Context, countryID int64) ([]*models.Community, error) {
	list, err := queryAll(ctx, s.db, scanCommunity, `SELECT `+communityColumns+` FROM "Community" WHERE "countryId" = ? ORDER BY "communityId"`, countryID)
	return list, s.logErr("ListCommunitiesByCountry", err)
}

func (s *SQLiteStore) GetCountry(ctx context.Context, id int64) (*models.Country, error) {
	c, err := firstOrNil(queryAll(ctx, s.db, scanCountry, `SELECT `+countryColumns+` FROM "Country" WHERE "countryId" = ?`, id))
	return c, s.logErr("GetCountry", err)
}

func (s *SQLiteStore) GetCountryByCode(ctx context.Context, code string) (*models.Country, error) {
	c, err := firstOrNil(queryAll(ctx, s.db, scanCountry, `SELECT `+countryColumns+` FROM "Country" WHERE UPPER("code") = UPPER(?)`, strings.TrimSpace(code)))
	return c, s.logErr("GetCountryByCode", err)
}

func (s *SQLiteStore) ListCountries(ctx context.Context) ([]*models.Country, error) {
	list, err := queryAll(ctx, s.db, scanCountry, `SELECT `+countryColumns+` FROM "Country" ORDER BY "countryId"`)
	return list, s.logErr("ListCountries", err)
}

// --- People ---

func (s *SQLiteStore) ListPeople(ctx context.Context) ([]*models.Person, error) {
	list, err := queryAll(ctx, s.db, scanPerson, `SELECT `+personColumns+` FROM "Person" ORDER BY "personId"`)
	return list, s.logErr("ListPeople", err)
}

func (s *SQLiteStore) ListPeopleByCommunities(ctx context.Context, communityIDs []int64) ([]*models.Person, error) {
	list, err := queryIn(ctx, s.db, scanPerson, `SELECT `+personColumns+` FROM "Person" WHERE "communityId" IN (?) ORDER BY "personId"`, communityIDs)
	return list, s.logErr("ListPeopleByCommunities", err)
}

// --- Surveys ---

func (s *SQLiteStore) ListSurveys(ctx context.Context) ([]*models.Survey, error) {
	list, err := queryAll(ctx, s.db, func(row scanner) (*models.Survey, error) {
		var sv models.Survey
		return &sv, row.Scan(&sv.ID, &sv.Title, &sv.Description)
	}, `SELECT "surveyId", COALESCE("title", ''), COALESCE("description", '') FROM "Survey" ORDER BY "surveyId"`)
	return list, s.logErr("ListSurveys", err)
}

func (s *SQLiteStore) ListSurveyQuestions(ctx context.Context, surveyID int64) ([]*models.SurveyQuestion, error) {
	list, err := queryAll(ctx, s.db, func(row scanner) (*models.SurveyQuestion, error) {
		var sq models.SurveyQuestion
		return &sq, row.Scan(&sq.ID, &sq.SurveyID, &sq.QuestionID)
	}, `SELECT "surveyQuestionId", "surveyId", COALESCE("questionId", 0) FROM "SurveyQuestion" WHERE "surveyId" = ? ORDER BY "surveyQuestionId"`, surveyID)
	return list, s.logErr("ListSurveyQuestions", err)
}

func (s *SQLiteStore) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	q, err := firstOrNil(queryAll(ctx, s.db, func(row scanner) (*models.Question, error) {
		var q models.Question
		return &q, row.Scan(&q.ID, &q.Text, &q.Type)
	}, `SELECT "questionId", COALESCE("question", ''), COALESCE("type", '') FROM "Question" WHERE "questionId" = ?`, id))
	return q, s.logErr("GetQuestion", err)
}

func (s *SQLiteStore) CountQuestionOptions(ctx context.Context, questionID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "QuestionOption" WHERE "questionId" = ?`, questionID).Scan(&n)
	return n, s.logErr("CountQuestionOptions", err)
}

func (s *SQLiteStore) GetOptionsByIDs(ctx context.Context, ids []int64) (map[int64]*models.Option, error) {
	list, err := queryIn(ctx, s.db, func(row scanner) (*models.Option, error) {
		var o models.Option
		return &o, row.Scan(&o.ID, &o.Text)
	}, `SELECT "optionId", COALESCE("optionText", '') FROM "Option" WHERE "optionId" IN (?)`, ids)
	if err != nil {
		return nil, s.logErr("GetOptionsByIDs", err)
	}
	out := make(map[int64]*models.Option, len(list))
	for _, o := range list {
		out[o.ID] = o
	}
	return out, nil
}

// --- Responses ---

func (s *SQLiteStore) ListResponsesBySurveyQuestion(ctx context.Context, surveyQuestionID int64) ([]*models.Response, error) {
	list, err := queryAll(ctx, s.db, scanResponse, responseSelect+` WHERE r."surveyQuestionId" = ? ORDER BY r."responseId"`, surveyQuestionID)
	return list, s.logErr("ListResponsesBySurveyQuestion", err)
}

func (s *SQLiteStore) ListResponsesByPeople(ctx context.Context, personIDs []int64) ([]*models.Response, error) {
	list, err := queryIn(ctx, s.db, scanResponse, responseSelect+` WHERE r."personId" IN (?) ORDER BY r."responseId"`, personIDs)
	return list, s.logErr("ListResponsesByPeople", err)
}

func (s *SQLiteStore) ListResponses(ctx context.Context) ([]*models.Response, error) {
	list, err := queryAll(ctx, s.db, scanResponse, responseSelect+` ORDER BY r."responseId"`)
	return list, s.logErr("ListResponses", err)
}

var _ api.Store = (*SQLiteStore)(nil)
