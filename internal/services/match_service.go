package services

import (
	"errors"
	"fmt"
	"sort"

	"github.com/volunhub/volunteer-api/internal/matching"
	"github.com/volunhub/volunteer-api/internal/models"
	"github.com/volunhub/volunteer-api/internal/repository"
	"gorm.io/gorm"
)

// MatchService assembles scorer inputs from the database and ranks an
// opportunity's applicants. It never mutates state.
type MatchService struct {
	db *gorm.DB
}

// NewMatchService creates a new MatchService
func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{db: db}
}

// Candidate is one applicant with their compatibility breakdown
type Candidate struct {
	Application models.Application `json:"application"`
	Breakdown   matching.Breakdown `json:"breakdown"`
}

// RankCandidates scores every non-withdrawn applicant against the
// opportunity's requirements and returns them ordered best-first.
func (s *MatchService) RankCandidates(opportunityID, organizationID uint64) ([]Candidate, error) {
	oppRepo := repository.NewOpportunityRepository(s.db)
	appRepo := repository.NewApplicationRepository(s.db)

	opp, err := oppRepo.FindOwned(opportunityID, organizationID, "Skills", "Interests")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOpportunityNotFound
		}
		return nil, fmt.Errorf("failed to find opportunity: %w", err)
	}

	apps, err := appRepo.ListByOpportunity(opportunityID,
		models.ApplicationPending, models.ApplicationShortlisted, models.ApplicationAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	requirements := matching.OpportunityRequirements{
		RequiredSkills:     names(opp.Skills),
		PreferredInterests: interestNames(opp.Interests),
		City:               opp.City,
		State:              opp.State,
	}

	candidates := make([]Candidate, 0, len(apps))
	for _, app := range apps {
		profile, err := s.VolunteerProfile(app.VolunteerID)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, Candidate{
			Application: app,
			Breakdown:   matching.ScoreBreakdown(profile, requirements),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Breakdown.Score > candidates[j].Breakdown.Score
	})

	return candidates, nil
}

// VolunteerProfile gathers one volunteer's scorer inputs: profile attributes,
// attended history, and rating aggregate.
func (s *MatchService) VolunteerProfile(volunteerID uint64) (matching.VolunteerProfile, error) {
	volRepo := repository.NewVolunteerRepository(s.db)
	partRepo := repository.NewParticipationRepository(s.db)
	reviewRepo := repository.NewReviewRepository(s.db)

	volunteer, err := volRepo.FindByID(volunteerID, "Skills", "Interests")
	if err != nil {
		return matching.VolunteerProfile{}, fmt.Errorf("failed to find volunteer: %w", err)
	}

	attended, err := partRepo.CountAttendedByVolunteer(volunteerID)
	if err != nil {
		return matching.VolunteerProfile{}, fmt.Errorf("failed to count attendance: %w", err)
	}

	average, reviews, err := reviewRepo.AverageForReviewee(models.ReviewerVolunteer, volunteerID)
	if err != nil {
		return matching.VolunteerProfile{}, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	return matching.VolunteerProfile{
		Skills:        names(volunteer.Skills),
		Interests:     interestNames(volunteer.Interests),
		Availability:  volunteer.Availability,
		City:          volunteer.City,
		State:         volunteer.State,
		AttendedCount: int(attended),
		AverageRating: average,
		RatingCount:   int(reviews),
	}, nil
}

func names(skills []models.Skill) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = s.Name
	}
	return out
}

func interestNames(interests []models.Interest) []string {
	out := make([]string, len(interests))
	for i, in := range interests {
		out[i] = in.Name
	}
	return out
}
