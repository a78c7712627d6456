package services

import (
	"fmt"
	"log"
	"time"

	"conference-review-api/config"
	"conference-review-api/models"

	"gorm.io/gorm"
)

// NotificationService writes in-app notification rows and sends workflow
// emails. Delivery failures are logged and never fail the transaction that
// triggered them.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) create(userID int, title, message, notifType string, submissionID *int) {
	notification := models.Notification{
		UserID:              userID,
		Title:               title,
		Message:             message,
		Type:                notifType,
		RelatedSubmissionID: submissionID,
		CreateAt:            time.Now(),
	}
	if err := s.db.Create(&notification).Error; err != nil {
		log.Printf("Warning: failed to create notification for user %d: %v", userID, err)
	}
}

// NotifyDecision informs the author and linked co-authors that a decision
// was published, in-app and by email.
func (s *NotificationService) NotifyDecision(submission *models.Submission) {
	if submission == nil {
		return
	}

	notifType := "success"
	if submission.Status == models.StatusRejected {
		notifType = "warning"
	}
	title := fmt.Sprintf("Decision published for %s", submission.SubmissionNumber)
	message := fmt.Sprintf("Your submission %q has been %s.", submission.Title, submission.Status)
	id := submission.SubmissionID

	s.create(submission.AuthorID, title, message, notifType, &id)

	var coauthors []models.SubmissionCoauthor
	if err := s.db.Where("submission_id = ? AND user_id IS NOT NULL", submission.SubmissionID).
		Find(&coauthors).Error; err == nil {
		for _, coauthor := range coauthors {
			if coauthor.UserID != nil {
				s.create(*coauthor.UserID, title, message, notifType, &id)
			}
		}
	}

	var author models.User
	if err := s.db.Where("user_id = ?", submission.AuthorID).First(&author).Error; err != nil {
		log.Printf("Warning: failed to load author %d for decision mail: %v", submission.AuthorID, err)
		return
	}
	body := fmt.Sprintf("<p>Dear %s %s,</p><p>%s</p>", author.UserFname, author.UserLname, message)
	if submission.DecisionFeedback != nil {
		body += fmt.Sprintf("<p>Feedback from the organizers:</p><blockquote>%s</blockquote>", *submission.DecisionFeedback)
	}
	if err := config.SendMail([]string{author.Email}, title, body); err != nil {
		log.Printf("Warning: failed to send decision mail for submission %d: %v", submission.SubmissionID, err)
	}
}

// NotifyRevisionSubmitted tells reviewers with an outstanding revision
// verdict that the author resubmitted and their review can be updated.
func (s *NotificationService) NotifyRevisionSubmitted(submission *models.Submission) {
	if submission == nil {
		return
	}

	var reviews []models.Review
	if err := s.db.Preload("Reviewer").
		Where("submission_id = ? AND recommendation IN ? AND for_revision_count < ?",
			submission.SubmissionID,
			[]models.Recommendation{models.RecommendMinorRevision, models.RecommendMajorRevision},
			submission.RevisionCount).
		Find(&reviews).Error; err != nil {
		log.Printf("Warning: failed to load reviews for revision notice on submission %d: %v", submission.SubmissionID, err)
		return
	}

	title := fmt.Sprintf("Revision submitted for %s", submission.SubmissionNumber)
	message := fmt.Sprintf("The author of %q uploaded revision %d. Your review can now be updated.",
		submission.Title, submission.RevisionCount)
	id := submission.SubmissionID

	for _, review := range reviews {
		s.create(review.ReviewerID, title, message, "info", &id)
		if review.Reviewer != nil && review.Reviewer.Email != "" {
			body := fmt.Sprintf("<p>%s</p>", message)
			if err := config.SendMail([]string{review.Reviewer.Email}, title, body); err != nil {
				log.Printf("Warning: failed to send revision mail to reviewer %d: %v", review.ReviewerID, err)
			}
		}
	}
}

// ListNotifications returns the user's notifications, newest first.
func (s *NotificationService) ListNotifications(userID int) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := s.db.Where("user_id = ?", userID).
		Order("create_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(userID, notificationID int) error {
	result := s.db.Model(&models.Notification{}).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{"is_read": true, "update_at": time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: notification %d", ErrNotFound, notificationID)
	}
	return nil
}
