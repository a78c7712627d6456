package controllers

import (
	"net/http"
	"strconv"

	"conference-review-api/config"
	"conference-review-api/models"
	"conference-review-api/services"

	"github.com/gin-gonic/gin"
)

func submissionIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID"})
		return 0, false
	}
	return id, true
}

// CreateSubmission handles a new paper submission from an author.
func CreateSubmission(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input services.SubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	submission, err := services.NewSubmissionService(config.DB).CreateSubmission(userID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// GetSubmissions lists the submissions visible to the current actor.
func GetSubmissions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	submissions, err := services.NewSubmissionService(config.DB).ListSubmissions(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// GetSubmission returns one submission if the actor may see it.
func GetSubmission(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	submission, err := services.NewSubmissionService(config.DB).GetSubmission(userID, submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// ApproveSubmission marks a submission as open for reviewer bidding.
func ApproveSubmission(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	submission, err := services.NewLifecycleService(config.DB).ApproveSubmission(submissionID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Submission approved for review",
		"submission": submission,
	})
}

// RecordDecision publishes the organizer's accept/reject decision.
func RecordDecision(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Decision string `json:"decision" binding:"required"`
		Feedback string `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	submission, err := services.NewLifecycleService(config.DB).
		RecordDecision(userID, submissionID, models.SubmissionStatus(req.Decision), req.Feedback)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Decision recorded",
		"submission": submission,
	})
}

// SubmitRevision records the author's resubmission after a revision verdict.
func SubmitRevision(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	var req struct {
		FileURL  string  `json:"file_url" binding:"required"`
		Abstract *string `json:"abstract"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	submission, err := services.NewLifecycleService(config.DB).
		SubmitRevision(userID, submissionID, req.FileURL, req.Abstract)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Revision submitted",
		"submission": submission,
	})
}

// GetSubmissionHistory returns the status audit trail (organizer only,
// enforced at the route).
func GetSubmissionHistory(c *gin.Context) {
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	history, err := services.NewSubmissionService(config.DB).GetStatusHistory(submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": history,
		"total":   len(history),
	})
}
