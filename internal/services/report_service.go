package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/soaringjerry/surveystats/internal/models"
)

// ReportService composes per-survey response rates and answer breakdowns.
type ReportService struct {
	store StatsStore
}

func NewReportService(store StatsStore) *ReportService {
	return &ReportService{store: store}
}

// BuildSurveyReports builds a report for every survey, scoped to pop.
func (s *ReportService) BuildSurveyReports(ctx context.Context, pop *Population) ([]SurveyReport, error) {
	if s.store == nil {
		return nil, errors.New("report service store is nil")
	}
	surveys, err := s.store.ListSurveys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	out := make([]SurveyReport, 0, len(surveys))
	for _, sv := range surveys {
		if sv == nil {
			continue
		}
		rep, err := s.BuildSurveyReport(ctx, sv, pop)
		if err != nil {
			return nil, err
		}
		out = append(out, *rep)
	}
	return out, nil
}

// BuildSurveyReport builds the report of one survey. A question whose stored
// data is inconsistent is reported with an error marker instead of answers.
func (s *ReportService) BuildSurveyReport(ctx context.Context, sv *models.Survey, pop *Population) (*SurveyReport, error) {
	links, err := s.store.ListSurveyQuestions(ctx, sv.ID)
	if err != nil {
		return nil, fmt.Errorf("list survey questions of survey %d: %w", sv.ID, err)
	}
	respondents := map[int64]struct{}{}
	questions := make([]QuestionReport, 0, len(links))
	for _, link := range links {
		if link == nil {
			continue
		}
		responses, err := s.store.ListResponsesBySurveyQuestion(ctx, link.ID)
		if err != nil {
			return nil, fmt.Errorf("list responses of survey question %d: %w", link.ID, err)
		}
		for _, r := range responses {
			if r != nil && pop.Contains(r.PersonID) {
				respondents[r.PersonID] = struct{}{}
			}
		}
		qr, err := s.questionReport(ctx, link, responses, pop)
		if err != nil {
			if !IsDataIntegrity(err) {
				return nil, err
			}
			log.Printf("report: survey %d question link %d: %v", sv.ID, link.ID, err)
			qr.Answers = []AnswerCount{}
			qr.Error = "data integrity: " + err.Error()
		}
		questions = append(questions, qr)
	}
	return &SurveyReport{
		SurveyID:     sv.ID,
		Title:        sv.Title,
		Description:  sv.Description,
		ResponseRate: Percentage(len(respondents), pop.Size()),
		Responses:    questions,
	}, nil
}

func (s *ReportService) questionReport(ctx context.Context, link *models.SurveyQuestion, responses []*models.Response, pop *Population) (QuestionReport, error) {
	qr := QuestionReport{QuestionID: link.QuestionID}
	q, err := s.store.GetQuestion(ctx, link.QuestionID)
	if err != nil {
		return qr, fmt.Errorf("get question %d: %w", link.QuestionID, err)
	}
	if q == nil {
		return qr, NewDataIntegrityError(fmt.Sprintf("question %d does not exist", link.QuestionID))
	}
	qr.Question = q.Text
	qr.QuestionType = q.Type
	optionCount, err := s.store.CountQuestionOptions(ctx, q.ID)
	if err != nil {
		return qr, fmt.Errorf("count options of question %d: %w", q.ID, err)
	}
	qr.ChartType = SelectChartType(q.Type, optionCount)
	answers, err := TallyAnswers(ctx, q.Type, responses, pop, s.store.GetOptionsByIDs)
	if err != nil {
		return qr, err
	}
	qr.Answers = answers
	return qr, nil
}
