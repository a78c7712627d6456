package controllers

import (
	"net/http"

	"conference-review-api/config"
	"conference-review-api/services"

	"github.com/gin-gonic/gin"
)

// GetReviewEligibility reports what the current reviewer may do with a
// submission: nothing, create a review, view a finalized one, wait for the
// author, or update after a revision.
func GetReviewEligibility(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	eligibility, err := services.NewReviewService(config.DB).GetEligibility(userID, submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"outcome":          eligibility.Outcome,
		"has_review":       eligibility.HasReview(),
		"is_final_verdict": eligibility.IsFinalVerdict(),
		"can_create":       eligibility.CanCreate(),
		"can_update":       eligibility.CanUpdate(),
		"review":           eligibility.Review,
	})
}

// CreateOrUpdateReview records the reviewer's verdict, creating the review
// on first submission and overwriting it in place after a revision cycle.
func CreateOrUpdateReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	var input services.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	review, err := services.NewReviewService(config.DB).CreateOrUpdateReview(userID, submissionID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"review":  review,
	})
}

// GetReviews lists a submission's reviews scoped by the actor's capability.
func GetReviews(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	reviews, err := services.NewReviewService(config.DB).ListReviews(userID, submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
		"total":   len(reviews),
	})
}
