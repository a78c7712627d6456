package services

import (
	"errors"
	"testing"

	"conference-review-api/models"
)

func TestResolveEligibilityTable(t *testing.T) {
	approved := &models.Submission{OrganizerApproved: true, Status: models.StatusUnderReview}
	unapproved := &models.Submission{Status: models.StatusSubmitted}
	decided := &models.Submission{OrganizerApproved: true, Status: models.StatusAccepted, RevisionCount: 1}
	revised := &models.Submission{OrganizerApproved: true, Status: models.StatusUnderReview, RevisionCount: 1}

	finalReview := &models.Review{Recommendation: models.RecommendReject, ForRevisionCount: 0}
	pendingRevision := &models.Review{Recommendation: models.RecommendMinorRevision, ForRevisionCount: 0}

	cases := []struct {
		name        string
		submission  *models.Submission
		review      *models.Review
		acceptedBid bool
		want        EligibilityOutcome
	}{
		{"no review, accepted bid", approved, nil, true, EligibilityCreate},
		{"no review, no bid", approved, nil, false, EligibilityNotEligible},
		{"no review, unapproved submission", unapproved, nil, true, EligibilityNotEligible},
		{"no review, decided submission", decided, nil, true, EligibilityNotEligible},
		{"final verdict", approved, finalReview, true, EligibilityFinalized},
		{"final verdict on decided submission", decided, finalReview, true, EligibilityFinalized},
		{"revision verdict, no resubmission", approved, pendingRevision, true, EligibilityAwaitingRevision},
		{"revision verdict, author resubmitted", revised, pendingRevision, true, EligibilityUpdate},
		{"revision verdict, decided meanwhile", decided, pendingRevision, true, EligibilityNotEligible},
	}

	for _, tc := range cases {
		got := resolveEligibility(tc.submission, tc.review, tc.acceptedBid)
		if got.Outcome != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got.Outcome)
		}
		if (got.Review != nil) != (tc.review != nil && got.Outcome != EligibilityCreate) {
			t.Errorf("%s: unexpected review presence", tc.name)
		}
	}
}

func TestReviewInputValidation(t *testing.T) {
	db := newTestDB(t)
	service := NewReviewService(db)

	cases := []struct {
		name  string
		input ReviewInput
	}{
		{"score too low", ReviewInput{Score: 0, Recommendation: models.RecommendAccept, Comments: "ok"}},
		{"score too high", ReviewInput{Score: 11, Recommendation: models.RecommendAccept, Comments: "ok"}},
		{"bad recommendation", ReviewInput{Score: 5, Recommendation: "MAYBE", Comments: "ok"}},
		{"empty comments", ReviewInput{Score: 5, Recommendation: models.RecommendAccept, Comments: "   "}},
	}
	for _, tc := range cases {
		if _, err := service.CreateOrUpdateReview(1, 1, tc.input); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: expected ErrInvalidArgument, got %v", tc.name, err)
		}
	}
}

func TestCreateReviewRequiresAcceptedBid(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, models.RoleAuthor, "author@example.org", "")
	organizer := seedUser(t, db, models.RoleOrganizer, "chair@example.org", "")
	reviewer := seedUser(t, db, models.RoleReviewer, "reviewer@example.org", "")
	track := seedTrack(t, db, "Graphics")
	submission := seedSubmission(t, db, author.UserID, track, "Ray Tracing on Toasters")

	if _, err := NewLifecycleService(db).ApproveSubmission(submission.SubmissionID, organizer.UserID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	service := NewReviewService(db)
	input := ReviewInput{Score: 6, Recommendation: models.RecommendAccept, Comments: "solid work"}

	// No bid at all.
	if _, err := service.CreateOrUpdateReview(reviewer.UserID, submission.SubmissionID, input); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible without bid, got %v", err)
	}

	// Pending bid is not enough.
	if _, err := NewBidService(db).PlaceBid(reviewer.UserID, submission.SubmissionID, 8); err != nil {
		t.Fatalf("bid failed: %v", err)
	}
	if _, err := service.CreateOrUpdateReview(reviewer.UserID, submission.SubmissionID, input); !errors.Is(err, ErrNotEligible) {
		t.Fatalf("expected ErrNotEligible with pending bid, got %v", err)
	}

	acceptBid(t, db, reviewer.UserID, submission.SubmissionID)
	review, err := service.CreateOrUpdateReview(reviewer.UserID, submission.SubmissionID, input)
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if review.ReviewNumber != 1 {
		t.Fatalf("expected review_number 1, got %d", review.ReviewNumber)
	}
	if got := reloadSubmission(t, db, submission.SubmissionID).Status; got != models.StatusUnderReview {
		t.Fatalf("expected under_review after first review, got %s", got)
	}
}

func TestRevisionCycleUpdatesReviewInPlace(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, models.RoleAuthor, "author@example.org", "")
	organizer := seedUser(t, db, models.RoleOrganizer, "chair@example.org", "")
	reviewer := seedUser(t, db, models.RoleReviewer, "reviewer@example.org", "")
	track := seedTrack(t, db, "Databases")
	submission := seedSubmission(t, db, author.UserID, track, "B-Trees Reloaded")

	lifecycle := NewLifecycleService(db)
	reviews := NewReviewService(db)

	if _, err := lifecycle.ApproveSubmission(submission.SubmissionID, organizer.UserID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := NewBidService(db).PlaceBid(reviewer.UserID, submission.SubmissionID, 7); err != nil {
		t.Fatalf("bid failed: %v", err)
	}
	acceptBid(t, db, reviewer.UserID, submission.SubmissionID)

	first, err := reviews.CreateOrUpdateReview(reviewer.UserID, submission.SubmissionID, ReviewInput{
		Score:          4,
		Recommendation: models.RecommendMajorRevision,
		Comments:       "needs more experiments",
	})
	if err != nil {
		t.Fatalf("first review failed: %v", err)
	}
	if first.ForRevisionCount != 0 {
		t.Fatalf("expected for_revision_count 0, got %d", first.ForRevisionCount)
	}
	if got := reloadSubmission(t, db, submission.SubmissionID).Status; got != models.StatusRevision {
		t.Fatalf("expected revision, got %s", got)
	}

	// The verdict is pending; the reviewer may only view it.
	eligibility, err := reviews.GetEligibility(reviewer.UserID, submission.SubmissionID)
	if err != nil {
		t.Fatalf("eligibility failed: %v", err)
	}
	if !eligibility.HasReview() || eligibility.IsFinalVerdict() || eligibility.CanUpdate() {
		t.Fatalf("expected awaiting-revision view, got %+v", eligibility)
	}
	if _, err := reviews.CreateOrUpdateReview(reviewer.UserID, submission.SubmissionID, ReviewInput{
		Score:          5,
		Recommendation: models.RecommendMinorRevision,
		Comments:       "changed my mind",
	}); !errors.Is(err, ErrAwaitingAuthorRevision) {
		t.Fatalf("expected ErrAwaitingAuthorRevision, got %v", err)
	}

	if _, err := lifecycle.SubmitRevision(author.UserID, submission.SubmissionID, "/uploads/v2.pdf", nil); err != nil {
		t.Fatalf("revision failed: %v", err)
	}

	eligibility, err = reviews.GetEligibility(reviewer.UserID, submission.SubmissionID)
	if err != nil {
		t.Fatalf("eligibility failed: %v", err)
	}
	if !eligibility.CanUpdate() {
		t.Fatalf("expected can_update after resubmission, got %+v", eligibility)
	}

	second, err := reviews.CreateOrUpdateReview(reviewer.UserID, submission.SubmissionID, ReviewInput{
		Score:          8,
		Recommendation: models.RecommendAccept,
		Comments:       "looks good now",
	})
	if err != nil {
		t.Fatalf("updated review failed: %v", err)
	}
	if second.ReviewID != first.ReviewID {
		t.Fatalf("expected the same review row, got %d and %d", first.ReviewID, second.ReviewID)
	}
	if second.ForRevisionCount != 1 {
		t.Fatalf("expected for_revision_count 1, got %d", second.ForRevisionCount)
	}

	var count int64
	if err := db.Model(&models.Review{}).
		Where("reviewer_id = ? AND submission_id = ?", reviewer.UserID, submission.SubmissionID).
		Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one review row, got %d", count)
	}
}

func TestFinalVerdictBlocksFurtherReviews(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, models.RoleAuthor, "author@example.org", "")
	organizer := seedUser(t, db, models.RoleOrganizer, "chair@example.org", "")
	reviewer := seedUser(t, db, models.RoleReviewer, "reviewer@example.org", "")
	track := seedTrack(t, db, "Verification")
	submission := seedSubmission(t, db, author.UserID, track, "Proof by Intimidation")

	if _, err := NewLifecycleService(db).ApproveSubmission(submission.SubmissionID, organizer.UserID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := NewBidService(db).PlaceBid(reviewer.UserID, submission.SubmissionID, 9); err != nil {
		t.Fatalf("bid failed: %v", err)
	}
	acceptBid(t, db, reviewer.UserID, submission.SubmissionID)

	reviews := NewReviewService(db)
	if _, err := reviews.CreateOrUpdateReview(reviewer.UserID, submission.SubmissionID, ReviewInput{
		Score:          2,
		Recommendation: models.RecommendReject,
		Comments:       "not sound",
	}); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	_, err := reviews.CreateOrUpdateReview(reviewer.UserID, submission.SubmissionID, ReviewInput{
		Score:          9,
		Recommendation: models.RecommendAccept,
		Comments:       "on second thought",
	})
	if !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("expected ErrAlreadyFinalized, got %v", err)
	}

	eligibility, err := reviews.GetEligibility(reviewer.UserID, submission.SubmissionID)
	if err != nil {
		t.Fatalf("eligibility failed: %v", err)
	}
	if !eligibility.IsFinalVerdict() || eligibility.CanUpdate() || eligibility.CanCreate() {
		t.Fatalf("expected read-only final verdict, got %+v", eligibility)
	}
}

func TestListReviewsCapabilities(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, models.RoleAuthor, "author@example.org", "")
	organizer := seedUser(t, db, models.RoleOrganizer, "chair@example.org", "")
	reviewer := seedUser(t, db, models.RoleReviewer, "reviewer@example.org", "")
	stranger := seedUser(t, db, models.RoleAuthor, "stranger@example.org", "")
	track := seedTrack(t, db, "HCI")
	submission := seedSubmission(t, db, author.UserID, track, "Buttons Considered Harmful")

	if _, err := NewLifecycleService(db).ApproveSubmission(submission.SubmissionID, organizer.UserID); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := NewBidService(db).PlaceBid(reviewer.UserID, submission.SubmissionID, 6); err != nil {
		t.Fatalf("bid failed: %v", err)
	}
	acceptBid(t, db, reviewer.UserID, submission.SubmissionID)

	confidential := "bar the author from future conferences"
	if _, err := NewReviewService(db).CreateOrUpdateReview(reviewer.UserID, submission.SubmissionID, ReviewInput{
		Score:                3,
		Recommendation:       models.RecommendReject,
		Comments:             "unconvincing evaluation",
		ConfidentialComments: &confidential,
	}); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	service := NewReviewService(db)

	// The author sees the review without confidential comments.
	authorView, err := service.ListReviews(author.UserID, submission.SubmissionID)
	if err != nil {
		t.Fatalf("author list failed: %v", err)
	}
	if len(authorView) != 1 {
		t.Fatalf("expected one review, got %d", len(authorView))
	}
	if authorView[0].ConfidentialComments != nil {
		t.Fatal("confidential comments leaked to the author")
	}

	// The organizer sees everything.
	organizerView, err := service.ListReviews(organizer.UserID, submission.SubmissionID)
	if err != nil {
		t.Fatalf("organizer list failed: %v", err)
	}
	if organizerView[0].ConfidentialComments == nil || *organizerView[0].ConfidentialComments != confidential {
		t.Fatal("expected confidential comments for the organizer")
	}

	// An unrelated user is refused.
	if _, err := service.ListReviews(stranger.UserID, submission.SubmissionID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
}

// TestEndToEndScenario walks the complete lifecycle: submission, approval,
// bidding, revision verdict, resubmission, updated final verdict, decision.
func TestEndToEndScenario(t *testing.T) {
	db := newTestDB(t)
	author := seedUser(t, db, models.RoleAuthor, "author@example.org", "")
	organizer := seedUser(t, db, models.RoleOrganizer, "chair@example.org", "")
	reviewer := seedUser(t, db, models.RoleReviewer, "reviewer@example.org", "distributed systems")
	track := seedTrack(t, db, "Distributed Systems")

	lifecycle := NewLifecycleService(db)
	bids := NewBidService(db)
	reviews := NewReviewService(db)

	submission := seedSubmission(t, db, author.UserID, track, "Consensus Without Tears")
	if submission.Status != models.StatusSubmitted {
		t.Fatalf("expected submitted, got %s", submission.Status)
	}

	approved, err := lifecycle.ApproveSubmission(submission.SubmissionID, organizer.UserID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if !approved.OrganizerApproved || approved.Status != models.StatusSubmitted {
		t.Fatalf("unexpected state after approval: %+v", approved)
	}

	bid, err := bids.PlaceBid(reviewer.UserID, submission.SubmissionID, 7)
	if err != nil {
		t.Fatalf("bid failed: %v", err)
	}
	if bid.Status != models.BidPending || bid.Confidence != 7 {
		t.Fatalf("unexpected bid: %+v", bid)
	}
	acceptBid(t, db, reviewer.UserID, submission.SubmissionID)

	review, err := reviews.CreateOrUpdateReview(reviewer.UserID, submission.SubmissionID, ReviewInput{
		Score:          6,
		Recommendation: models.RecommendMajorRevision,
		Comments:       "needs more experiments",
	})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if review.ForRevisionCount != 0 {
		t.Fatalf("expected for_revision_count 0, got %d", review.ForRevisionCount)
	}
	if got := reloadSubmission(t, db, submission.SubmissionID).Status; got != models.StatusRevision {
		t.Fatalf("expected revision, got %s", got)
	}

	revised, err := lifecycle.SubmitRevision(author.UserID, submission.SubmissionID, "/uploads/v2.pdf", nil)
	if err != nil {
		t.Fatalf("revision failed: %v", err)
	}
	if revised.RevisionCount != 1 || revised.Status != models.StatusUnderReview {
		t.Fatalf("unexpected state after revision: %+v", revised)
	}

	updated, err := reviews.CreateOrUpdateReview(reviewer.UserID, submission.SubmissionID, ReviewInput{
		Score:          8,
		Recommendation: models.RecommendAccept,
		Comments:       "looks good now",
	})
	if err != nil {
		t.Fatalf("updated review failed: %v", err)
	}
	if updated.ReviewID != review.ReviewID {
		t.Fatal("expected the same review row after the revision cycle")
	}
	if updated.ForRevisionCount != 1 || updated.Recommendation != models.RecommendAccept {
		t.Fatalf("unexpected review after update: %+v", updated)
	}

	decided, err := lifecycle.RecordDecision(organizer.UserID, submission.SubmissionID, models.StatusAccepted, "see you in Lisbon")
	if err != nil {
		t.Fatalf("decision failed: %v", err)
	}
	if decided.Status != models.StatusAccepted || decided.DecidedAt == nil {
		t.Fatalf("unexpected decision state: %+v", decided)
	}

	if _, err := reviews.CreateOrUpdateReview(reviewer.UserID, submission.SubmissionID, ReviewInput{
		Score:          1,
		Recommendation: models.RecommendReject,
		Comments:       "regrets",
	}); !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("expected ErrAlreadyFinalized after decision, got %v", err)
	}

	// The decision left a notification for the author.
	notifications, err := NewNotificationService(db).ListNotifications(author.UserID)
	if err != nil {
		t.Fatalf("notifications failed: %v", err)
	}
	if len(notifications) == 0 {
		t.Fatal("expected a decision notification for the author")
	}
}
