// Package matching computes compatibility scores between volunteers and
// opportunities. Everything here is pure: no persistence, no clock, no side
// effects — callers gather the inputs and get back a deterministic score.
package matching

import (
	"math"
	"strings"

	"github.com/volunhub/volunteer-api/internal/models"
)

// Signal weights. They sum to 1.0.
const (
	WeightSkills       = 0.40
	WeightInterests    = 0.15
	WeightAvailability = 0.10
	WeightLocation     = 0.10
	WeightExperience   = 0.15
	WeightRating       = 0.10
)

const (
	// experienceCap is the number of attended opportunities at which the
	// experience signal saturates, so newcomers are not buried.
	experienceCap = 5

	// minReviews is how many reviews a volunteer needs before their average
	// rating replaces the neutral prior.
	minReviews = 3

	neutralRating = 0.5
	ratingFloor   = 0.25
)

// VolunteerProfile is the volunteer-side input to the scorer.
type VolunteerProfile struct {
	Skills        []string
	Interests     []string
	Availability  models.Availability
	City          string
	State         string
	AttendedCount int
	AverageRating float64
	RatingCount   int
}

// OpportunityRequirements is the opportunity-side input to the scorer.
type OpportunityRequirements struct {
	RequiredSkills     []string
	PreferredInterests []string
	City               string
	State              string
}

// Breakdown carries the weighted contribution of each signal alongside the
// final integer score, for explanatory display.
type Breakdown struct {
	Skills       float64 `json:"skills"`
	Interests    float64 `json:"interests"`
	Availability float64 `json:"availability"`
	Location     float64 `json:"location"`
	Experience   float64 `json:"experience"`
	Rating       float64 `json:"rating"`
	Score        int     `json:"score"`
}

// Score returns the compatibility score as an integer in [0, 100].
func Score(v VolunteerProfile, o OpportunityRequirements) int {
	return ScoreBreakdown(v, o).Score
}

// ScoreBreakdown computes the score along with its weighted sub-scores.
func ScoreBreakdown(v VolunteerProfile, o OpportunityRequirements) Breakdown {
	b := Breakdown{
		Skills:       WeightSkills * matchRatio(v.Skills, o.RequiredSkills),
		Interests:    WeightInterests * matchRatio(v.Interests, o.PreferredInterests),
		Availability: WeightAvailability * availabilityScore(v.Availability),
		Location:     WeightLocation * locationScore(v, o),
		Experience:   WeightExperience * experienceScore(v.AttendedCount),
		Rating:       WeightRating * ratingScore(v.AverageRating, v.RatingCount),
	}

	total := b.Skills + b.Interests + b.Availability + b.Location + b.Experience + b.Rating
	b.Score = int(math.Round(total * 100))
	return b
}

// matchRatio returns the fraction of wanted entries the volunteer has,
// capped at 1. Zero when nothing is wanted.
func matchRatio(have, want []string) float64 {
	if len(want) == 0 {
		return 0
	}

	matched := 0
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				matched++
				break
			}
		}
	}

	return math.Min(1, float64(matched)/float64(len(want)))
}

func availabilityScore(a models.Availability) float64 {
	switch a {
	case models.AvailabilityFlexible:
		return 1.0
	case models.AvailabilityWeekends:
		return 0.8
	case models.AvailabilityPartTime:
		return 0.6
	case models.AvailabilityWeekdays:
		return 0.5
	default:
		return 0
	}
}

func locationScore(v VolunteerProfile, o OpportunityRequirements) float64 {
	if v.City != "" && strings.EqualFold(v.City, o.City) {
		return 1.0
	}
	if v.State != "" && strings.EqualFold(v.State, o.State) {
		return 0.6
	}
	return 0
}

func experienceScore(attended int) float64 {
	return math.Min(float64(attended)/experienceCap, 1)
}

// ratingScore is a neutral 0.5 until enough reviews exist, then the scaled
// average with a floor so one bad early review cannot dominate.
func ratingScore(average float64, count int) float64 {
	if count < minReviews {
		return neutralRating
	}
	return math.Max(average/5, ratingFloor)
}
