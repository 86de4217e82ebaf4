package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/soaringjerry/surveystats/internal/api"
)

// ImportSnapshot copies every row of snap into an empty database in a single
// transaction. It backs the first-run seeding of development databases; the
// statistics service itself never writes.
func ImportSnapshot(ctx context.Context, db *sql.DB, snap *api.Snapshot) (err error) {
	if snap == nil {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	exec := func(table, query string, args ...any) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
		return nil
	}
	for _, c := range snap.Countries {
		if err = exec("country", `INSERT INTO "Country" ("countryId", "name", "code", "latitude", "longitude") VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Code, c.Latitude, c.Longitude); err != nil {
			return err
		}
	}
	for _, c := range snap.Communities {
		if err = exec("community", `INSERT INTO "Community" ("communityId", "countryId", "city") VALUES (?, ?, ?)`,
			c.ID, nullableID(c.CountryID), c.City); err != nil {
			return err
		}
	}
	for _, p := range snap.People {
		if err = exec("person", `INSERT INTO "Person" ("personId", "firstName", "lastName", "date_of_birth", "gender", "communityId") VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.FirstName, p.LastName, nullableTime(p.DateOfBirth), p.Gender, nullableID(p.CommunityID)); err != nil {
			return err
		}
	}
	for _, q := range snap.Questions {
		if err = exec("question", `INSERT INTO "Question" ("questionId", "type", "question") VALUES (?, ?, ?)`, q.ID, q.Type, q.Text); err != nil {
			return err
		}
	}
	for _, o := range snap.Options {
		if err = exec("option", `INSERT INTO "Option" ("optionId", "optionText") VALUES (?, ?)`, o.ID, o.Text); err != nil {
			return err
		}
	}
	for _, qo := range snap.QuestionOptions {
		if err = exec("question option", `INSERT INTO "QuestionOption" ("questionOptionId", "questionId", "optionId") VALUES (?, ?, ?)`,
			qo.ID, qo.QuestionID, qo.OptionID); err != nil {
			return err
		}
	}
	for _, sv := range snap.Surveys {
		if err = exec("survey", `INSERT INTO "Survey" ("surveyId", "title", "description") VALUES (?, ?, ?)`, sv.ID, sv.Title, sv.Description); err != nil {
			return err
		}
	}
	for _, sq := range snap.SurveyQuestions {
		if err = exec("survey question", `INSERT INTO "SurveyQuestion" ("surveyQuestionId", "surveyId", "questionId") VALUES (?, ?, ?)`,
			sq.ID, sq.SurveyID, sq.QuestionID); err != nil {
			return err
		}
	}
	for _, r := range snap.Responses {
		if err = exec("response", `INSERT INTO "Response" ("responseId", "surveyQuestionId", "personId", "responseData", "responseTimestamp") VALUES (?, ?, ?, ?, ?)`,
			r.ID, r.SurveyQuestionID, r.PersonID, r.Data, nullableTime(r.Timestamp)); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
