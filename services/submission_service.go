package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"conference-review-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CoauthorInput is one co-author entry on a new submission, in author
// order. A linked user id grants that user read-only access.
type CoauthorInput struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	UserID *int   `json:"user_id,omitempty"`
}

// SubmissionInput is the payload for creating a submission.
type SubmissionInput struct {
	Title        string          `json:"title"`
	Abstract     string          `json:"abstract"`
	Keywords     []string        `json:"keywords"`
	FileURL      string          `json:"file_url"`
	TrackID      int             `json:"track_id"`
	ConferenceID int             `json:"conference_id"`
	Coauthors    []CoauthorInput `json:"coauthors"`
}

func (in SubmissionInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return invalidArgumentf("title is required")
	}
	if strings.TrimSpace(in.Abstract) == "" {
		return invalidArgumentf("abstract is required")
	}
	if strings.TrimSpace(in.FileURL) == "" {
		return invalidArgumentf("file_url is required")
	}
	if in.TrackID <= 0 || in.ConferenceID <= 0 {
		return invalidArgumentf("track_id and conference_id are required")
	}
	for _, coauthor := range in.Coauthors {
		if strings.TrimSpace(coauthor.Name) == "" || strings.TrimSpace(coauthor.Email) == "" {
			return invalidArgumentf("every co-author needs a name and an email")
		}
	}
	return nil
}

// SubmissionService owns creation and read access of submissions. Status
// transitions live in LifecycleService.
type SubmissionService struct {
	db *gorm.DB
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{db: db}
}

// CreateSubmission stores a new submission in the initial state
// (status=submitted, not yet organizer-approved) together with its ordered
// co-author list.
func (s *SubmissionService) CreateSubmission(authorID int, input SubmissionInput) (*models.Submission, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var submission *models.Submission
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := loadUserWithRole(tx, authorID, models.RoleAuthor); err != nil {
			return err
		}

		var track models.Track
		if err := tx.Where("track_id = ? AND conference_id = ? AND delete_at IS NULL",
			input.TrackID, input.ConferenceID).First(&track).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: track %d in conference %d", ErrNotFound, input.TrackID, input.ConferenceID)
			}
			return err
		}

		keywords := make([]string, 0, len(input.Keywords))
		for _, keyword := range input.Keywords {
			if trimmed := strings.TrimSpace(keyword); trimmed != "" {
				keywords = append(keywords, trimmed)
			}
		}

		created := models.Submission{
			SubmissionNumber: fmt.Sprintf("SUB-%s", strings.ToUpper(uuid.NewString()[:8])),
			Title:            strings.TrimSpace(input.Title),
			Abstract:         strings.TrimSpace(input.Abstract),
			Keywords:         strings.Join(keywords, ","),
			FileURL:          strings.TrimSpace(input.FileURL),
			AuthorID:         authorID,
			TrackID:          input.TrackID,
			ConferenceID:     input.ConferenceID,
			Status:           models.StatusSubmitted,
			CreateAt:         time.Now(),
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		for i, coauthor := range input.Coauthors {
			row := models.SubmissionCoauthor{
				SubmissionID: created.SubmissionID,
				Ordinal:      i + 1,
				Name:         strings.TrimSpace(coauthor.Name),
				Email:        strings.TrimSpace(coauthor.Email),
				UserID:       coauthor.UserID,
				CreateAt:     time.Now(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			created.Coauthors = append(created.Coauthors, row)
		}

		submission = &created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return submission, nil
}

// GetSubmission loads one submission if the actor may see it: the primary
// author, linked co-authors (read-only), organizers, and reviewers once the
// submission is organizer-approved.
func (s *SubmissionService) GetSubmission(actorID, submissionID int) (*models.Submission, error) {
	var actor models.User
	if err := s.db.Where("user_id = ? AND delete_at IS NULL", actorID).First(&actor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, actorID)
		}
		return nil, err
	}

	var submission models.Submission
	if err := s.db.Preload("Author").Preload("Track").Preload("Conference").Preload("Coauthors").
		Where("submission_id = ? AND delete_at IS NULL", submissionID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: submission %d", ErrNotFound, submissionID)
		}
		return nil, err
	}

	allowed := actor.RoleID == models.RoleOrganizer ||
		submission.AuthorID == actorID ||
		(actor.RoleID == models.RoleReviewer && submission.OrganizerApproved)
	if !allowed {
		linked, err := isLinkedCoauthor(s.db, actorID, submissionID)
		if err != nil {
			return nil, err
		}
		allowed = linked
	}
	if !allowed {
		return nil, fmt.Errorf("%w: no access to submission %d", ErrForbidden, submissionID)
	}
	return &submission, nil
}

// ListSubmissions returns what the actor's role allows: organizers get
// everything, authors their own and co-authored submissions, reviewers the
// ones they have bid or reviewed on.
func (s *SubmissionService) ListSubmissions(actorID int) ([]models.Submission, error) {
	var actor models.User
	if err := s.db.Where("user_id = ? AND delete_at IS NULL", actorID).First(&actor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, actorID)
		}
		return nil, err
	}

	query := s.db.Preload("Author").Preload("Track").Preload("Coauthors").
		Where("delete_at IS NULL").
		Order("create_at DESC, submission_id DESC")

	switch actor.RoleID {
	case models.RoleOrganizer:
		// unrestricted
	case models.RoleReviewer:
		query = query.Where(
			"submission_id IN (?) OR submission_id IN (?)",
			s.db.Model(&models.Bid{}).Select("submission_id").Where("reviewer_id = ?", actorID),
			s.db.Model(&models.Review{}).Select("submission_id").Where("reviewer_id = ?", actorID),
		)
	default:
		query = query.Where(
			"author_id = ? OR submission_id IN (?)",
			actorID,
			s.db.Model(&models.SubmissionCoauthor{}).Select("submission_id").Where("user_id = ?", actorID),
		)
	}

	var submissions []models.Submission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// GetStatusHistory returns the audit trail of a submission's transitions.
func (s *SubmissionService) GetStatusHistory(submissionID int) ([]models.SubmissionStatusHistory, error) {
	if _, err := loadSubmission(s.db, submissionID); err != nil {
		return nil, err
	}
	var history []models.SubmissionStatusHistory
	if err := s.db.Where("submission_id = ?", submissionID).
		Order("created_at ASC, history_id ASC").
		Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}
