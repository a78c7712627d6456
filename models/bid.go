package models

import "time"

// BidStatus is organizer-controlled; reviewers never change it after
// placing the bid.
type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAccepted BidStatus = "accepted"
	BidRejected BidStatus = "rejected"
)

func ValidBidStatus(s BidStatus) bool {
	switch s {
	case BidPending, BidAccepted, BidRejected:
		return true
	default:
		return false
	}
}

type Bid struct {
	BidID        int       `gorm:"primaryKey;column:bid_id" json:"bid_id"`
	ReviewerID   int       `gorm:"column:reviewer_id;uniqueIndex:uniq_reviewer_submission_bid" json:"reviewer_id"`
	SubmissionID int       `gorm:"column:submission_id;uniqueIndex:uniq_reviewer_submission_bid" json:"submission_id"`
	Confidence   int       `gorm:"column:confidence" json:"confidence"` // 1..10
	Status       BidStatus `gorm:"column:status" json:"status"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`

	Reviewer   *User       `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Submission *Submission `gorm:"foreignKey:SubmissionID" json:"submission,omitempty"`
}

// TableName specifies the table name for Bid.
func (Bid) TableName() string {
	return "bids"
}
