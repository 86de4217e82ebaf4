package services

import "github.com/soaringjerry/surveystats/internal/models"

type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartPie  ChartType = "pie"
	ChartText ChartType = "text"
)

// maxBarOptions is the largest option count still rendered as a bar chart.
const maxBarOptions = 4

// SelectChartType derives the presentation hint for a question.
func SelectChartType(questionType string, optionCount int) ChartType {
	if questionType == models.QuestionTypeTextEntry {
		return ChartText
	}
	if optionCount <= maxBarOptions {
		return ChartBar
	}
	return ChartPie
}
