package matching

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/volunhub/volunteer-api/internal/models"
)

func TestScoreBreakdown_WeightedSignals(t *testing.T) {
	volunteer := VolunteerProfile{
		Skills:        []string{"first aid", "cooking"},
		Interests:     []string{"environment"},
		Availability:  models.AvailabilityWeekends,
		City:          "Springfield",
		State:         "IL",
		AttendedCount: 3,
		AverageRating: 4.5,
		RatingCount:   4,
	}
	opportunity := OpportunityRequirements{
		RequiredSkills:     []string{"first aid", "cooking", "driving"},
		PreferredInterests: []string{"environment", "education"},
		City:               "Springfield",
		State:              "IL",
	}

	b := ScoreBreakdown(volunteer, opportunity)

	require.InDelta(t, WeightSkills*2.0/3.0, b.Skills, 1e-9)
	require.InDelta(t, WeightInterests*0.5, b.Interests, 1e-9)
	require.InDelta(t, WeightAvailability*0.8, b.Availability, 1e-9)
	require.InDelta(t, WeightLocation*1.0, b.Location, 1e-9)
	require.InDelta(t, WeightExperience*0.6, b.Experience, 1e-9)
	require.InDelta(t, WeightRating*0.9, b.Rating, 1e-9)
	require.Equal(t, 70, b.Score)
}

func TestScore_PerfectMatch(t *testing.T) {
	volunteer := VolunteerProfile{
		Skills:        []string{"gardening", "carpentry"},
		Interests:     []string{"housing"},
		Availability:  models.AvailabilityFlexible,
		City:          "Austin",
		State:         "TX",
		AttendedCount: 8,
		AverageRating: 5.0,
		RatingCount:   3,
	}
	opportunity := OpportunityRequirements{
		RequiredSkills:     []string{"gardening", "carpentry"},
		PreferredInterests: []string{"housing"},
		City:               "Austin",
		State:              "TX",
	}

	require.Equal(t, 100, Score(volunteer, opportunity))
}

func TestScore_EmptyProfile(t *testing.T) {
	// A blank profile against a blank opportunity still carries the neutral
	// rating prior, nothing else.
	score := Score(VolunteerProfile{}, OpportunityRequirements{})
	require.Equal(t, 5, score)
}

func TestScore_Deterministic(t *testing.T) {
	volunteer := VolunteerProfile{
		Skills:        []string{"tutoring"},
		Availability:  models.AvailabilityPartTime,
		State:         "CA",
		AttendedCount: 1,
	}
	opportunity := OpportunityRequirements{
		RequiredSkills: []string{"tutoring", "mentoring"},
		State:          "CA",
	}

	first := ScoreBreakdown(volunteer, opportunity)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, ScoreBreakdown(volunteer, opportunity))
	}
}

func TestMatchRatio_CaseInsensitive(t *testing.T) {
	have := []string{"First Aid", "COOKING"}
	want := []string{"first aid", "cooking"}
	require.Equal(t, 1.0, matchRatio(have, want))
}

func TestMatchRatio_NothingWanted(t *testing.T) {
	require.Equal(t, 0.0, matchRatio([]string{"anything"}, nil))
}

func TestRatingScore_NeutralUntilEnoughReviews(t *testing.T) {
	require.Equal(t, neutralRating, ratingScore(1.0, 2))
	require.Equal(t, neutralRating, ratingScore(5.0, 0))

	// At the threshold the real average takes over, floored.
	require.Equal(t, ratingFloor, ratingScore(1.0, minReviews))
	require.Equal(t, 1.0, ratingScore(5.0, minReviews))
}

func TestExperienceScore_Saturates(t *testing.T) {
	require.Equal(t, 0.0, experienceScore(0))
	require.InDelta(t, 0.4, experienceScore(2), 1e-9)
	require.Equal(t, 1.0, experienceScore(experienceCap))
	require.Equal(t, 1.0, experienceScore(experienceCap*3))
}

func TestAddingSkillNeverLowersScore(t *testing.T) {
	opportunity := OpportunityRequirements{
		RequiredSkills: []string{"driving", "cooking", "translation"},
	}

	base := VolunteerProfile{Skills: []string{"driving"}}
	richer := VolunteerProfile{Skills: []string{"driving", "cooking"}}

	require.LessOrEqual(t, Score(base, opportunity), Score(richer, opportunity))
}
