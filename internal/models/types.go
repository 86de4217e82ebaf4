package models

import "time"

// Question types with special handling in reports. Any other value is treated
// as a single-answer question.
const (
	QuestionTypeMultipleChoice = "Multiple Choice"
	QuestionTypeTextEntry      = "Text Entry"
)

// Country is a geographic grouping of communities.
type Country struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Code      string  `json:"code"` // ISO code, unique
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Community is a city or region taking part in surveys.
type Community struct {
	ID        int64  `json:"id"`
	CountryID *int64 `json:"country_id,omitempty"`
	City      string `json:"city"`
}

// Person is a respondent. Age is derived from DateOfBirth, never stored.
type Person struct {
	ID          int64      `json:"id"`
	FirstName   string     `json:"first_name,omitempty"`
	LastName    string     `json:"last_name,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	CommunityID *int64     `json:"community_id,omitempty"`
}

type Survey struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Question struct {
	ID   int64  `json:"id"`
	Text string `json:"question"`
	Type string `json:"type"`
}

// SurveyQuestion links a Question into a Survey; responses attach to it.
type SurveyQuestion struct {
	ID         int64 `json:"id"`
	SurveyID   int64 `json:"survey_id"`
	QuestionID int64 `json:"question_id"`
}

type Option struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type QuestionOption struct {
	ID         int64 `json:"id"`
	QuestionID int64 `json:"question_id"`
	OptionID   int64 `json:"option_id"`
}

// Response is one answer of a person to a survey question. For multiple choice
// questions Data holds comma separated option ids.
type Response struct {
	ID               int64      `json:"id"`
	SurveyQuestionID int64      `json:"survey_question_id"`
	SurveyID         int64      `json:"survey_id"` // resolved through SurveyQuestion by the store
	PersonID         int64      `json:"person_id"`
	Data             string     `json:"data"`
	Timestamp        *time.Time `json:"timestamp,omitempty"`
}
