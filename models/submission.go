package models

import "time"

// SubmissionStatus is the workflow state of a submission. Transitions are
// owned exclusively by services.LifecycleService.
type SubmissionStatus string

const (
	StatusSubmitted   SubmissionStatus = "submitted"
	StatusUnderReview SubmissionStatus = "under_review"
	StatusRevision    SubmissionStatus = "revision"
	StatusAccepted    SubmissionStatus = "accepted"
	StatusRejected    SubmissionStatus = "rejected"
)

func ValidSubmissionStatus(s SubmissionStatus) bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusRevision, StatusAccepted, StatusRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status accepts no further bids, reviews or
// transitions.
func (s SubmissionStatus) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

type Submission struct {
	SubmissionID      int              `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	SubmissionNumber  string           `gorm:"column:submission_number;unique" json:"submission_number"`
	Title             string           `gorm:"column:title" json:"title"`
	Abstract          string           `gorm:"column:abstract" json:"abstract"`
	Keywords          string           `gorm:"column:keywords" json:"keywords"` // comma-joined, order preserved
	FileURL           string           `gorm:"column:file_url" json:"file_url"`
	AuthorID          int              `gorm:"column:author_id" json:"author_id"`
	TrackID           int              `gorm:"column:track_id" json:"track_id"`
	ConferenceID      int              `gorm:"column:conference_id" json:"conference_id"`
	Status            SubmissionStatus `gorm:"column:status" json:"status"`
	OrganizerApproved bool             `gorm:"column:organizer_approved" json:"organizer_approved"`
	RevisionCount     int              `gorm:"column:revision_count" json:"revision_count"`
	Version           int              `gorm:"column:version" json:"-"` // optimistic concurrency counter
	DecidedAt         *time.Time       `gorm:"column:decided_at" json:"decided_at,omitempty"`
	DecisionFeedback  *string          `gorm:"column:decision_feedback" json:"decision_feedback,omitempty"`
	CreateAt          time.Time        `gorm:"column:create_at" json:"create_at"`
	UpdateAt          *time.Time       `gorm:"column:update_at" json:"update_at,omitempty"`
	DeleteAt          *time.Time       `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Author     *User                `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Track      *Track               `gorm:"foreignKey:TrackID" json:"track,omitempty"`
	Conference *Conference          `gorm:"foreignKey:ConferenceID" json:"conference,omitempty"`
	Coauthors  []SubmissionCoauthor `gorm:"foreignKey:SubmissionID" json:"coauthors,omitempty"`
	Reviews    []Review             `gorm:"foreignKey:SubmissionID" json:"reviews,omitempty"`
}

// SubmissionCoauthor is a read-only participant on a submission. A linked
// user may view the submission but never trigger transitions.
type SubmissionCoauthor struct {
	CoauthorID   int       `gorm:"primaryKey;column:coauthor_id" json:"coauthor_id"`
	SubmissionID int       `gorm:"column:submission_id;uniqueIndex:uniq_submission_ordinal" json:"submission_id"`
	Ordinal      int       `gorm:"column:ordinal;uniqueIndex:uniq_submission_ordinal" json:"ordinal"`
	Name         string    `gorm:"column:name" json:"name"`
	Email        string    `gorm:"column:email" json:"email"`
	UserID       *int      `gorm:"column:user_id" json:"user_id,omitempty"`
	CreateAt     time.Time `gorm:"column:create_at" json:"create_at"`
}

// SubmissionStatusHistory records every status change for auditability.
type SubmissionStatusHistory struct {
	HistoryID    int               `gorm:"primaryKey;column:history_id" json:"history_id"`
	SubmissionID int               `gorm:"column:submission_id" json:"submission_id"`
	OldStatus    *SubmissionStatus `gorm:"column:old_status" json:"old_status,omitempty"`
	NewStatus    SubmissionStatus  `gorm:"column:new_status" json:"new_status"`
	ChangedBy    int               `gorm:"column:changed_by" json:"changed_by"`
	Reason       *string           `gorm:"column:reason" json:"reason,omitempty"`
	CreatedAt    time.Time         `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides
func (Submission) TableName() string {
	return "submissions"
}

func (SubmissionCoauthor) TableName() string {
	return "submission_coauthors"
}

func (SubmissionStatusHistory) TableName() string {
	return "submission_status_histories"
}
