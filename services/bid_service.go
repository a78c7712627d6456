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

// BidService records reviewer interest in approved submissions. Duplicate
// placement on the same (reviewer, submission) pair is serialized by the
// unique index on bids: the first insert wins, the loser sees ErrConflict.
type BidService struct {
	db *gorm.DB
}

func NewBidService(db *gorm.DB) *BidService {
	return &BidService{db: db}
}

// PlaceBid creates a pending bid for the reviewer on an approved,
// non-terminal submission.
func (s *BidService) PlaceBid(reviewerID, submissionID, confidence int) (*models.Bid, error) {
	if !utils.InRange(confidence, 1, 10) {
		return nil, invalidArgumentf("confidence must be between 1 and 10, got %d", confidence)
	}

	var bid *models.Bid
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := loadUserWithRole(tx, reviewerID, models.RoleReviewer); err != nil {
			return err
		}
		submission, err := loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if !submission.OrganizerApproved {
			return fmt.Errorf("%w: submission %d is not approved for review", ErrNotEligible, submissionID)
		}
		if submission.Status.IsTerminal() {
			return fmt.Errorf("%w: submission %d is already decided", ErrNotEligible, submissionID)
		}

		var existing int64
		if err := tx.Model(&models.Bid{}).
			Where("reviewer_id = ? AND submission_id = ?", reviewerID, submissionID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: bid already placed on submission %d", ErrConflict, submissionID)
		}

		created := models.Bid{
			ReviewerID:   reviewerID,
			SubmissionID: submissionID,
			Confidence:   confidence,
			Status:       models.BidPending,
			CreatedAt:    time.Now(),
		}
		if err := tx.Create(&created).Error; err != nil {
			// Concurrent placement slipped past the pre-check; the unique
			// index decides the winner.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: bid already placed on submission %d", ErrConflict, submissionID)
			}
			return err
		}
		bid = &created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bid, nil
}

// ListBids returns the reviewer's own bids, newest first.
func (s *BidService) ListBids(reviewerID int) ([]models.Bid, error) {
	var bids []models.Bid
	if err := s.db.Preload("Submission").
		Where("reviewer_id = ?", reviewerID).
		Order("created_at DESC").
		Find(&bids).Error; err != nil {
		return nil, err
	}
	return bids, nil
}

// SetBidStatus is the organizer's control over a bid: accepting it makes
// the reviewer eligible to write a review.
func (s *BidService) SetBidStatus(organizerID, bidID int, status models.BidStatus) (*models.Bid, error) {
	if !models.ValidBidStatus(status) {
		return nil, invalidArgumentf("unknown bid status %q", status)
	}

	var updated *models.Bid
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := loadUserWithRole(tx, organizerID, models.RoleOrganizer); err != nil {
			return err
		}
		var bid models.Bid
		if err := tx.Where("bid_id = ?", bidID).First(&bid).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: bid %d", ErrNotFound, bidID)
			}
			return err
		}
		if err := tx.Model(&models.Bid{}).
			Where("bid_id = ?", bidID).
			Update("status", status).Error; err != nil {
			return err
		}
		bid.Status = status
		updated = &bid
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListEligibleSubmissions returns the approved, undecided submissions of a
// conference whose track matches any of the reviewer's expertise domains.
// Matching is a case-insensitive substring test in either direction; an
// empty domain list matches every track. The reviewer's own submissions are
// excluded. Results are ordered by creation time so a fixed input set
// always produces the same sequence.
func (s *BidService) ListEligibleSubmissions(reviewerID, conferenceID int, domains []string) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := s.db.Preload("Track").Preload("Coauthors").
		Where("conference_id = ? AND organizer_approved = ? AND status NOT IN ? AND author_id <> ? AND delete_at IS NULL",
			conferenceID, true,
			[]models.SubmissionStatus{models.StatusAccepted, models.StatusRejected},
			reviewerID).
		Order("create_at ASC, submission_id ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	if len(domains) == 0 {
		return submissions, nil
	}

	eligible := make([]models.Submission, 0, len(submissions))
	for _, submission := range submissions {
		trackName := ""
		if submission.Track != nil {
			trackName = submission.Track.Name
		}
		if matchesAnyDomain(trackName, domains) {
			eligible = append(eligible, submission)
		}
	}
	return eligible, nil
}

func matchesAnyDomain(trackName string, domains []string) bool {
	track := strings.ToLower(strings.TrimSpace(trackName))
	if track == "" {
		return false
	}
	for _, domain := range domains {
		d := strings.ToLower(strings.TrimSpace(domain))
		if d == "" {
			continue
		}
		if strings.Contains(track, d) || strings.Contains(d, track) {
			return true
		}
	}
	return false
}
