package services

import (
	"math"
	"strings"
	"time"

	"github.com/soaringjerry/surveystats/internal/models"
)

// GenderLabels are the recognised gender categories, in reporting order.
var GenderLabels = []string{"Male", "Female", "Other", "I prefer not to say"}

// Population is the set of people in scope for one report. Build it once per
// request and pass the same value to every aggregation so all denominators agree.
type Population struct {
	People []*models.Person
	ids    map[int64]struct{}
}

func NewPopulation(people []*models.Person) *Population {
	ids := make(map[int64]struct{}, len(people))
	for _, p := range people {
		if p != nil {
			ids[p.ID] = struct{}{}
		}
	}
	return &Population{People: people, ids: ids}
}

func (p *Population) Size() int {
	if p == nil {
		return 0
	}
	return len(p.People)
}

func (p *Population) Contains(personID int64) bool {
	if p == nil {
		return false
	}
	_, ok := p.ids[personID]
	return ok
}

// IDs returns the person ids in population order.
func (p *Population) IDs() []int64 {
	if p == nil {
		return nil
	}
	out := make([]int64, 0, len(p.People))
	for _, person := range p.People {
		if person != nil {
			out = append(out, person.ID)
		}
	}
	return out
}

// Percentage returns part/whole*100 rounded to one decimal, or 0 for an empty whole.
func Percentage(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return round1(float64(part) / float64(whole) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// GenderDistribution returns the percentage of people per recognised gender label.
func GenderDistribution(people []*models.Person) map[string]float64 {
	counts := make(map[string]int, len(GenderLabels))
	for _, p := range people {
		if p == nil {
			continue
		}
		g := strings.TrimSpace(p.Gender)
		for _, label := range GenderLabels {
			if strings.EqualFold(g, label) {
				counts[label]++
				break
			}
		}
	}
	out := make(map[string]float64, len(GenderLabels))
	for _, label := range GenderLabels {
		out[label] = Percentage(counts[label], len(people))
	}
	return out
}

// AgeDistribution returns the share of people per age band. People without a
// birth date fall in no band but still count towards the denominator.
func AgeDistribution(people []*models.Person, asOf time.Time) []AgeShare {
	counts := make(map[AgeBand]int, len(AgeBands))
	for _, p := range people {
		if p == nil || p.DateOfBirth == nil {
			continue
		}
		counts[ClassifyAge(*p.DateOfBirth, asOf)]++
	}
	out := make([]AgeShare, 0, len(AgeBands))
	for _, band := range AgeBands {
		out = append(out, AgeShare{AgeGroup: band, Percentage: Percentage(counts[band], len(people))})
	}
	return out
}
