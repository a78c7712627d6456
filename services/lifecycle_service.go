package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"conference-review-api/models"

	"gorm.io/gorm"
)

// LifecycleService is the single authority for submission status
// transitions. Every mutation re-reads the row inside a transaction and
// writes it back guarded by the version column; a lost race is retried once
// before ErrConflict reaches the caller.
type LifecycleService struct {
	db            *gorm.DB
	notifications *NotificationService
}

func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{db: db, notifications: NewNotificationService(db)}
}

// mutate runs fn in a transaction and retries once when the optimistic
// version check lost a concurrent race.
func (s *LifecycleService) mutate(fn func(tx *gorm.DB) error) error {
	err := s.db.Transaction(fn)
	if errors.Is(err, ErrConflict) {
		err = s.db.Transaction(fn)
	}
	return err
}

func loadSubmission(tx *gorm.DB, submissionID int) (*models.Submission, error) {
	var submission models.Submission
	if err := tx.Where("submission_id = ? AND delete_at IS NULL", submissionID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: submission %d", ErrNotFound, submissionID)
		}
		return nil, err
	}
	return &submission, nil
}

func loadUserWithRole(tx *gorm.DB, userID int, roleID int) (*models.User, error) {
	var user models.User
	if err := tx.Where("user_id = ? AND delete_at IS NULL", userID).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}
	if user.RoleID != roleID {
		return nil, fmt.Errorf("%w: user %d lacks required role", ErrForbidden, userID)
	}
	return &user, nil
}

// casUpdateSubmission writes updates guarded by the submission's version.
// Zero affected rows means another writer committed first.
func casUpdateSubmission(tx *gorm.DB, submission *models.Submission, updates map[string]interface{}) error {
	now := time.Now()
	updates["version"] = submission.Version + 1
	updates["update_at"] = now
	result := tx.Model(&models.Submission{}).
		Where("submission_id = ? AND version = ?", submission.SubmissionID, submission.Version).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: submission %d was modified concurrently", ErrConflict, submission.SubmissionID)
	}
	submission.Version++
	submission.UpdateAt = &now
	return nil
}

func appendStatusHistory(tx *gorm.DB, submissionID int, oldStatus, newStatus models.SubmissionStatus, changedBy int, reason string) error {
	history := models.SubmissionStatusHistory{
		SubmissionID: submissionID,
		OldStatus:    &oldStatus,
		NewStatus:    newStatus,
		ChangedBy:    changedBy,
		CreatedAt:    time.Now(),
	}
	if trimmed := strings.TrimSpace(reason); trimmed != "" {
		history.Reason = &trimmed
	}
	return tx.Create(&history).Error
}

// ApproveSubmission marks a submission as approved for reviewer bidding.
// The status itself does not change.
func (s *LifecycleService) ApproveSubmission(submissionID, organizerID int) (*models.Submission, error) {
	var approved *models.Submission
	err := s.mutate(func(tx *gorm.DB) error {
		if _, err := loadUserWithRole(tx, organizerID, models.RoleOrganizer); err != nil {
			return err
		}
		submission, err := loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if submission.Status.IsTerminal() {
			return fmt.Errorf("%w: submission %d already decided", ErrPreconditionFailed, submissionID)
		}
		if !submission.OrganizerApproved {
			if err := casUpdateSubmission(tx, submission, map[string]interface{}{
				"organizer_approved": true,
			}); err != nil {
				return err
			}
			submission.OrganizerApproved = true
		}
		approved = submission
		return nil
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// RecordDecision moves an under_review submission to accepted or rejected.
// At least one review carrying a final verdict for the current revision
// round must exist.
func (s *LifecycleService) RecordDecision(organizerID, submissionID int, decision models.SubmissionStatus, feedback string) (*models.Submission, error) {
	if decision != models.StatusAccepted && decision != models.StatusRejected {
		return nil, invalidArgumentf("decision must be accepted or rejected")
	}

	var decided *models.Submission
	err := s.mutate(func(tx *gorm.DB) error {
		if _, err := loadUserWithRole(tx, organizerID, models.RoleOrganizer); err != nil {
			return err
		}
		submission, err := loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if submission.Status != models.StatusUnderReview {
			return fmt.Errorf("%w: submission %d is %s, not under review", ErrPreconditionFailed, submissionID, submission.Status)
		}

		var finalVerdicts int64
		if err := tx.Model(&models.Review{}).
			Where("submission_id = ? AND recommendation IN ? AND for_revision_count = ?",
				submissionID,
				[]models.Recommendation{models.RecommendAccept, models.RecommendReject},
				submission.RevisionCount).
			Count(&finalVerdicts).Error; err != nil {
			return err
		}
		if finalVerdicts == 0 {
			return fmt.Errorf("%w: no final-verdict review on submission %d", ErrPreconditionFailed, submissionID)
		}

		now := time.Now()
		updates := map[string]interface{}{
			"status":     decision,
			"decided_at": now,
		}
		trimmed := strings.TrimSpace(feedback)
		if trimmed != "" {
			updates["decision_feedback"] = trimmed
		}
		oldStatus := submission.Status
		if err := casUpdateSubmission(tx, submission, updates); err != nil {
			return err
		}
		if err := appendStatusHistory(tx, submissionID, oldStatus, decision, organizerID, trimmed); err != nil {
			return err
		}
		submission.Status = decision
		submission.DecidedAt = &now
		if trimmed != "" {
			submission.DecisionFeedback = &trimmed
		}
		decided = submission
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyDecision(decided)
	return decided, nil
}

// SubmitRevision records the author's resubmission after a revision
// verdict: new file, optionally a new abstract, revision_count+1 and the
// submission returns to under_review. Only the primary author may call it.
func (s *LifecycleService) SubmitRevision(authorID, submissionID int, fileURL string, abstract *string) (*models.Submission, error) {
	if strings.TrimSpace(fileURL) == "" {
		return nil, invalidArgumentf("file_url is required")
	}

	var revised *models.Submission
	err := s.mutate(func(tx *gorm.DB) error {
		submission, err := loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if submission.AuthorID != authorID {
			return fmt.Errorf("%w: only the primary author may submit a revision", ErrForbidden)
		}
		if submission.Status != models.StatusRevision {
			return fmt.Errorf("%w: submission %d is %s, not awaiting revision", ErrPreconditionFailed, submissionID, submission.Status)
		}

		updates := map[string]interface{}{
			"status":         models.StatusUnderReview,
			"revision_count": submission.RevisionCount + 1,
			"file_url":       fileURL,
		}
		if abstract != nil && strings.TrimSpace(*abstract) != "" {
			updates["abstract"] = strings.TrimSpace(*abstract)
		}
		oldStatus := submission.Status
		if err := casUpdateSubmission(tx, submission, updates); err != nil {
			return err
		}
		if err := appendStatusHistory(tx, submissionID, oldStatus, models.StatusUnderReview, authorID,
			fmt.Sprintf("revision %d submitted", submission.RevisionCount+1)); err != nil {
			return err
		}
		submission.Status = models.StatusUnderReview
		submission.RevisionCount++
		submission.FileURL = fileURL
		if abstract != nil && strings.TrimSpace(*abstract) != "" {
			submission.Abstract = strings.TrimSpace(*abstract)
		}
		revised = submission
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifications.NotifyRevisionSubmitted(revised)
	return revised, nil
}

// applyReviewTransition runs inside the review service's transaction and
// moves the submission according to the recorded recommendation: the first
// review takes an approved submission to under_review, a revision verdict
// takes it to revision.
func applyReviewTransition(tx *gorm.DB, submission *models.Submission, recommendation models.Recommendation, reviewerID int) error {
	if submission.Status == models.StatusSubmitted {
		oldStatus := submission.Status
		if err := casUpdateSubmission(tx, submission, map[string]interface{}{
			"status": models.StatusUnderReview,
		}); err != nil {
			return err
		}
		submission.Status = models.StatusUnderReview
		if err := appendStatusHistory(tx, submission.SubmissionID, oldStatus, models.StatusUnderReview, reviewerID, "first review recorded"); err != nil {
			return err
		}
	}

	if recommendation.IsRevisionVerdict() && submission.Status == models.StatusUnderReview {
		oldStatus := submission.Status
		if err := casUpdateSubmission(tx, submission, map[string]interface{}{
			"status": models.StatusRevision,
		}); err != nil {
			return err
		}
		submission.Status = models.StatusRevision
		if err := appendStatusHistory(tx, submission.SubmissionID, oldStatus, models.StatusRevision, reviewerID,
			fmt.Sprintf("reviewer requested %s", strings.ToLower(string(recommendation)))); err != nil {
			return err
		}
	}
	return nil
}
