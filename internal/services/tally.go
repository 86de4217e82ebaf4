package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/soaringjerry/surveystats/internal/models"
)

// OptionLookup resolves option ids to options in one round trip.
type OptionLookup func(ctx context.Context, ids []int64) (map[int64]*models.Option, error)

// TallyAnswers builds the answer breakdown of one survey question from its
// responses, counting only people in pop.
//
// Multiple choice responses are comma separated option ids and are counted per
// option. Every other response is reported verbatim with a total of one;
// identical free text answers are kept as separate rows.
func TallyAnswers(ctx context.Context, questionType string, responses []*models.Response, pop *Population, lookup OptionLookup) ([]AnswerCount, error) {
	if questionType == models.QuestionTypeMultipleChoice {
		return tallyMultipleChoice(ctx, responses, pop, lookup)
	}
	out := make([]AnswerCount, 0, len(responses))
	for _, r := range responses {
		if r == nil || !pop.Contains(r.PersonID) {
			continue
		}
		out = append(out, AnswerCount{Answer: r.Data, Total: 1})
	}
	return out, nil
}

func tallyMultipleChoice(ctx context.Context, responses []*models.Response, pop *Population, lookup OptionLookup) ([]AnswerCount, error) {
	counts := map[int64]int{}
	order := make([]int64, 0)
	for _, r := range responses {
		if r == nil || !pop.Contains(r.PersonID) {
			continue
		}
		ids, err := parseOptionIDs(r)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if _, seen := counts[id]; !seen {
				order = append(order, id)
			}
			counts[id]++
		}
	}
	if len(order) == 0 {
		return []AnswerCount{}, nil
	}
	if lookup == nil {
		return nil, fmt.Errorf("tally: no option lookup configured")
	}
	options, err := lookup(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("tally: lookup options: %w", err)
	}
	out := make([]AnswerCount, 0, len(order))
	for _, id := range order {
		opt, ok := options[id]
		if !ok || opt == nil {
			return nil, NewDataIntegrityError(fmt.Sprintf("option %d referenced by a response does not exist", id))
		}
		out = append(out, AnswerCount{Answer: opt.Text, Total: counts[id]})
	}
	return out, nil
}

func parseOptionIDs(r *models.Response) ([]int64, error) {
	parts := strings.Split(r.Data, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		tok := strings.TrimSpace(part)
		if tok == "" {
			continue
		}
		id, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, NewDataIntegrityError(fmt.Sprintf("response %d holds invalid option id %q", r.ID, tok))
		}
		ids = append(ids, id)
	}
	return ids, nil
}
