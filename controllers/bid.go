package controllers

import (
	"net/http"
	"strconv"

	"conference-review-api/config"
	"conference-review-api/models"
	"conference-review-api/services"

	"github.com/gin-gonic/gin"
)

// PlaceBid records the reviewer's interest in a submission.
func PlaceBid(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	submissionID, ok := submissionIDParam(c)
	if !ok {
		return
	}

	// No binding tag on confidence: the service validates the range so that
	// zero and out-of-range values get the same machine-readable error.
	var req struct {
		Confidence int `json:"confidence"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	bid, err := services.NewBidService(config.DB).PlaceBid(userID, submissionID, req.Confidence)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"bid":     bid,
	})
}

// GetBids lists the current reviewer's bids.
func GetBids(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	bids, err := services.NewBidService(config.DB).ListBids(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bids":    bids,
		"total":   len(bids),
	})
}

// SetBidStatus is the organizer's accept/reject control over a bid.
func SetBidStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	bidID, err := strconv.Atoi(c.Param("bid_id"))
	if err != nil || bidID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bid ID"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	bid, err := services.NewBidService(config.DB).SetBidStatus(userID, bidID, models.BidStatus(req.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bid":     bid,
	})
}

// GetEligibleSubmissions lists a conference's submissions the reviewer may
// bid on, filtered by their declared expertise.
func GetEligibleSubmissions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conferenceID, err := strconv.Atoi(c.Param("id"))
	if err != nil || conferenceID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conference ID"})
		return
	}

	var reviewer models.User
	if err := config.DB.Where("user_id = ? AND delete_at IS NULL", userID).First(&reviewer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	submissions, err := services.NewBidService(config.DB).
		ListEligibleSubmissions(userID, conferenceID, reviewer.ExpertiseDomains())
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
