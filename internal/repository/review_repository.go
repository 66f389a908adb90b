package repository

import (
	"github.com/volunhub/volunteer-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormReviewRepository is a GORM implementation of ReviewRepository
type GormReviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &GormReviewRepository{db: db}
}

// Find finds the review for a (reviewer, opportunity, reviewee) triple
func (r *GormReviewRepository) Find(reviewerType models.ReviewerType, reviewerID, opportunityID uint64,
	revieweeType models.ReviewerType, revieweeID uint64) (*models.Review, error) {
	var review models.Review
	err := r.db.
		Where("reviewer_type = ? AND reviewer_id = ? AND opportunity_id = ? AND reviewee_type = ? AND reviewee_id = ?",
			reviewerType, reviewerID, opportunityID, revieweeType, revieweeID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Upsert inserts the review or updates the existing row for the triple
func (r *GormReviewRepository) Upsert(review *models.Review) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "reviewer_type"}, {Name: "reviewer_id"},
				{Name: "opportunity_id"},
				{Name: "reviewee_type"}, {Name: "reviewee_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
		}).
		Create(review).Error
}

// AverageForReviewee returns the average rating and review count received
func (r *GormReviewRepository) AverageForReviewee(revieweeType models.ReviewerType, revieweeID uint64) (float64, int64, error) {
	var count int64
	query := r.db.Model(&models.Review{}).
		Where("reviewee_type = ? AND reviewee_id = ?", revieweeType, revieweeID)

	if err := query.Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	var avg float64
	if err := query.Select("AVG(rating)").Scan(&avg).Error; err != nil {
		return 0, 0, err
	}

	return avg, count, nil
}
