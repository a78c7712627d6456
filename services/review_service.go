package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"conference-review-api/models"
	"conference-review-api/utils"

	"gorm.io/gorm"
)

// EligibilityOutcome tags what a reviewer may do with a (reviewer,
// submission) pair. Exactly one outcome holds at a time; both the API layer
// and any UI consume the same resolution.
type EligibilityOutcome string

const (
	// EligibilityNotEligible: no review exists and the prerequisites for
	// writing one are not met, or the submission is already decided.
	EligibilityNotEligible EligibilityOutcome = "not_eligible"
	// EligibilityCreate: no review exists and the reviewer may write one.
	EligibilityCreate EligibilityOutcome = "create"
	// EligibilityFinalized: the reviewer's verdict was ACCEPT or REJECT and
	// is permanently read-only.
	EligibilityFinalized EligibilityOutcome = "finalized"
	// EligibilityAwaitingRevision: a revision verdict is pending; the author
	// has not resubmitted yet.
	EligibilityAwaitingRevision EligibilityOutcome = "awaiting_revision"
	// EligibilityUpdate: the author resubmitted after the reviewer's
	// revision verdict; the existing review may be overwritten in place.
	EligibilityUpdate EligibilityOutcome = "update"
)

// ReviewEligibility is the resolved outcome plus the prior review when one
// exists.
type ReviewEligibility struct {
	Outcome EligibilityOutcome `json:"outcome"`
	Review  *models.Review     `json:"review,omitempty"`
}

func (e ReviewEligibility) HasReview() bool {
	return e.Review != nil
}

func (e ReviewEligibility) IsFinalVerdict() bool {
	return e.Review != nil && e.Review.Recommendation.IsFinalVerdict()
}

func (e ReviewEligibility) CanCreate() bool {
	return e.Outcome == EligibilityCreate
}

func (e ReviewEligibility) CanUpdate() bool {
	return e.Outcome == EligibilityUpdate
}

// resolveEligibility is the pure decision table. Rules apply in order:
//
//  1. no prior review: create, provided an accepted bid exists and the
//     submission is organizer-approved and not decided
//  2. prior final verdict: read-only forever
//  3. prior revision verdict, author has not resubmitted: read-only until
//     the revision arrives
//  4. prior revision verdict, author resubmitted: update in place
//
// A decided submission accepts no new or updated reviews in any case.
func resolveEligibility(submission *models.Submission, review *models.Review, hasAcceptedBid bool) ReviewEligibility {
	if review == nil {
		if hasAcceptedBid && submission.OrganizerApproved && !submission.Status.IsTerminal() {
			return ReviewEligibility{Outcome: EligibilityCreate}
		}
		return ReviewEligibility{Outcome: EligibilityNotEligible}
	}

	if review.Recommendation.IsFinalVerdict() {
		return ReviewEligibility{Outcome: EligibilityFinalized, Review: review}
	}

	if submission.RevisionCount > review.ForRevisionCount {
		if submission.Status.IsTerminal() {
			return ReviewEligibility{Outcome: EligibilityNotEligible, Review: review}
		}
		return ReviewEligibility{Outcome: EligibilityUpdate, Review: review}
	}

	return ReviewEligibility{Outcome: EligibilityAwaitingRevision, Review: review}
}

// ReviewInput is the payload for creating or updating a review.
type ReviewInput struct {
	Score                int                   `json:"score"`
	Recommendation       models.Recommendation `json:"recommendation"`
	Comments             string                `json:"comments"`
	ConfidentialComments *string               `json:"confidential_comments,omitempty"`
}

func (in ReviewInput) validate() error {
	if !utils.InRange(in.Score, 1, 10) {
		return invalidArgumentf("score must be between 1 and 10, got %d", in.Score)
	}
	if !models.ValidRecommendation(in.Recommendation) {
		return invalidArgumentf("unknown recommendation %q", in.Recommendation)
	}
	if strings.TrimSpace(in.Comments) == "" {
		return invalidArgumentf("comments must not be empty")
	}
	return nil
}

// ReviewService stores one review per (reviewer, submission) pair and
// resolves what a reviewer may do with it.
type ReviewService struct {
	db *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

func loadReview(tx *gorm.DB, reviewerID, submissionID int) (*models.Review, error) {
	var review models.Review
	err := tx.Where("reviewer_id = ? AND submission_id = ?", reviewerID, submissionID).
		First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func hasAcceptedBid(tx *gorm.DB, reviewerID, submissionID int) (bool, error) {
	var count int64
	err := tx.Model(&models.Bid{}).
		Where("reviewer_id = ? AND submission_id = ? AND status = ?", reviewerID, submissionID, models.BidAccepted).
		Count(&count).Error
	return count > 0, err
}

// GetEligibility resolves the decision table from a snapshot read. The
// authoritative resolution happens again inside CreateOrUpdateReview's
// transaction before anything is written.
func (s *ReviewService) GetEligibility(reviewerID, submissionID int) (ReviewEligibility, error) {
	var eligibility ReviewEligibility
	err := s.db.Transaction(func(tx *gorm.DB) error {
		submission, err := loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		review, err := loadReview(tx, reviewerID, submissionID)
		if err != nil {
			return err
		}
		accepted, err := hasAcceptedBid(tx, reviewerID, submissionID)
		if err != nil {
			return err
		}
		eligibility = resolveEligibility(submission, review, accepted)
		return nil
	})
	return eligibility, err
}

// CreateOrUpdateReview records the reviewer's verdict. Eligibility is
// re-resolved inside the transaction, so two reviewers racing for the same
// pair or an organizer deciding mid-write cannot slip past the guards. A
// revision verdict moves the submission to revision within the same
// transaction.
func (s *ReviewService) CreateOrUpdateReview(reviewerID, submissionID int, input ReviewInput) (*models.Review, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var review *models.Review
	write := func(tx *gorm.DB) error {
		if _, err := loadUserWithRole(tx, reviewerID, models.RoleReviewer); err != nil {
			return err
		}
		submission, err := loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		existing, err := loadReview(tx, reviewerID, submissionID)
		if err != nil {
			return err
		}
		accepted, err := hasAcceptedBid(tx, reviewerID, submissionID)
		if err != nil {
			return err
		}

		eligibility := resolveEligibility(submission, existing, accepted)
		switch eligibility.Outcome {
		case EligibilityCreate:
			created, err := insertReview(tx, reviewerID, submission, input)
			if err != nil {
				return err
			}
			review = created
		case EligibilityUpdate:
			updated, err := overwriteReview(tx, existing, submission, input)
			if err != nil {
				return err
			}
			review = updated
		case EligibilityFinalized:
			return fmt.Errorf("%w: reviewer %d already gave a final verdict on submission %d", ErrAlreadyFinalized, reviewerID, submissionID)
		case EligibilityAwaitingRevision:
			return fmt.Errorf("%w: submission %d has not been resubmitted since the last verdict", ErrAwaitingAuthorRevision, submissionID)
		default:
			return fmt.Errorf("%w: reviewer %d may not review submission %d", ErrNotEligible, reviewerID, submissionID)
		}

		return applyReviewTransition(tx, submission, input.Recommendation, reviewerID)
	}

	err := s.db.Transaction(write)
	if errors.Is(err, ErrConflict) {
		review = nil
		err = s.db.Transaction(write)
	}
	if err != nil {
		return nil, err
	}
	return review, nil
}

func insertReview(tx *gorm.DB, reviewerID int, submission *models.Submission, input ReviewInput) (*models.Review, error) {
	var priorReviews int64
	if err := tx.Model(&models.Review{}).
		Where("submission_id = ?", submission.SubmissionID).
		Count(&priorReviews).Error; err != nil {
		return nil, err
	}

	created := models.Review{
		ReviewerID:       reviewerID,
		SubmissionID:     submission.SubmissionID,
		Score:            input.Score,
		Recommendation:   input.Recommendation,
		Comments:         strings.TrimSpace(input.Comments),
		ReviewNumber:     int(priorReviews) + 1,
		ForRevisionCount: submission.RevisionCount,
		SubmittedAt:      time.Now(),
	}
	if input.ConfidentialComments != nil && strings.TrimSpace(*input.ConfidentialComments) != "" {
		trimmed := strings.TrimSpace(*input.ConfidentialComments)
		created.ConfidentialComments = &trimmed
	}
	if err := tx.Create(&created).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a concurrent create on the same pair; the retry will
			// re-resolve against the winner's row.
			return nil, fmt.Errorf("%w: concurrent review on submission %d", ErrConflict, submission.SubmissionID)
		}
		return nil, err
	}
	return &created, nil
}

// overwriteReview updates the existing row in place; the review id and
// review number are stable across revision cycles.
func overwriteReview(tx *gorm.DB, existing *models.Review, submission *models.Submission, input ReviewInput) (*models.Review, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"score":              input.Score,
		"recommendation":     input.Recommendation,
		"comments":           strings.TrimSpace(input.Comments),
		"for_revision_count": submission.RevisionCount,
		"updated_at":         now,
	}
	if input.ConfidentialComments != nil && strings.TrimSpace(*input.ConfidentialComments) != "" {
		updates["confidential_comments"] = strings.TrimSpace(*input.ConfidentialComments)
	}
	if err := tx.Model(&models.Review{}).
		Where("review_id = ?", existing.ReviewID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	existing.Score = input.Score
	existing.Recommendation = input.Recommendation
	existing.Comments = strings.TrimSpace(input.Comments)
	existing.ForRevisionCount = submission.RevisionCount
	existing.UpdatedAt = &now
	if value, ok := updates["confidential_comments"].(string); ok {
		existing.ConfidentialComments = &value
	}
	return existing, nil
}

// ListReviews returns a submission's reviews scoped by the actor's
// capability: organizers see everything, the primary author and linked
// co-authors see author-visible fields only, a reviewer sees their own
// review. Anyone else is refused.
func (s *ReviewService) ListReviews(actorID, submissionID int) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var actor models.User
		if err := tx.Where("user_id = ? AND delete_at IS NULL", actorID).First(&actor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrNotFound, actorID)
			}
			return err
		}
		submission, err := loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}

		query := tx.Preload("Reviewer").Where("submission_id = ?", submissionID)
		switch {
		case actor.RoleID == models.RoleOrganizer:
			// full visibility
		case submission.AuthorID == actorID:
			// author-visible fields only
		default:
			linked, err := isLinkedCoauthor(tx, actorID, submissionID)
			if err != nil {
				return err
			}
			if !linked {
				query = query.Where("reviewer_id = ?", actorID)
			}
		}
		if err := query.Order("review_number ASC").Find(&reviews).Error; err != nil {
			return err
		}

		if actor.RoleID != models.RoleOrganizer {
			for i := range reviews {
				reviews[i].ConfidentialComments = nil
			}
		}
		if len(reviews) == 0 && actor.RoleID != models.RoleOrganizer && submission.AuthorID != actorID {
			// A reviewer without a review on this submission has nothing to
			// see; distinguish that from an empty result for the author.
			var own int64
			if err := tx.Model(&models.Bid{}).
				Where("reviewer_id = ? AND submission_id = ?", actorID, submissionID).
				Count(&own).Error; err != nil {
				return err
			}
			if own == 0 {
				linked, err := isLinkedCoauthor(tx, actorID, submissionID)
				if err != nil {
					return err
				}
				if !linked {
					return fmt.Errorf("%w: no access to reviews of submission %d", ErrForbidden, submissionID)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func isLinkedCoauthor(tx *gorm.DB, userID, submissionID int) (bool, error) {
	var count int64
	err := tx.Model(&models.SubmissionCoauthor{}).
		Where("submission_id = ? AND user_id = ?", submissionID, userID).
		Count(&count).Error
	return count > 0, err
}
