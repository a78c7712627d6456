package models

import "time"

type Recommendation string

const (
	RecommendAccept        Recommendation = "ACCEPT"
	RecommendMinorRevision Recommendation = "MINOR_REVISION"
	RecommendMajorRevision Recommendation = "MAJOR_REVISION"
	RecommendReject        Recommendation = "REJECT"
)

func ValidRecommendation(r Recommendation) bool {
	switch r {
	case RecommendAccept, RecommendMinorRevision, RecommendMajorRevision, RecommendReject:
		return true
	default:
		return false
	}
}

// IsFinalVerdict reports whether the recommendation permanently closes the
// reviewer's ability to act on the submission.
func (r Recommendation) IsFinalVerdict() bool {
	return r == RecommendAccept || r == RecommendReject
}

// IsRevisionVerdict reports whether the recommendation reopens the
// submission for author resubmission.
func (r Recommendation) IsRevisionVerdict() bool {
	return r == RecommendMinorRevision || r == RecommendMajorRevision
}

// Review holds one reviewer's verdict on a submission. There is at most one
// live row per (reviewer, submission); after a revision cycle the same row
// is overwritten in place rather than duplicated.
type Review struct {
	ReviewID             int            `gorm:"primaryKey;column:review_id" json:"review_id"`
	ReviewerID           int            `gorm:"column:reviewer_id;uniqueIndex:uniq_reviewer_submission_review" json:"reviewer_id"`
	SubmissionID         int            `gorm:"column:submission_id;uniqueIndex:uniq_reviewer_submission_review" json:"submission_id"`
	Score                int            `gorm:"column:score" json:"score"` // 1..10
	Recommendation       Recommendation `gorm:"column:recommendation" json:"recommendation"`
	Comments             string         `gorm:"column:comments" json:"comments"`
	ConfidentialComments *string        `gorm:"column:confidential_comments" json:"confidential_comments,omitempty"` // organizer-only
	ReviewNumber         int            `gorm:"column:review_number" json:"review_number"` // stable ordinal per submission
	ForRevisionCount     int            `gorm:"column:for_revision_count" json:"for_revision_count"`
	SubmittedAt          time.Time      `gorm:"column:submitted_at" json:"submitted_at"`
	UpdatedAt            *time.Time     `gorm:"column:updated_at" json:"updated_at,omitempty"`

	Reviewer   *User       `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Submission *Submission `gorm:"foreignKey:SubmissionID" json:"submission,omitempty"`
}

// TableName specifies the table name for Review.
func (Review) TableName() string {
	return "reviews"
}
