package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"conference-review-api/models"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Conference{},
		&models.Track{},
		&models.Submission{},
		&models.SubmissionCoauthor{},
		&models.SubmissionStatusHistory{},
		&models.Bid{},
		&models.Review{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, roleID int, email string, expertise string) *models.User {
	t.Helper()
	now := time.Now()
	user := models.User{
		UserFname: "Test",
		UserLname: email,
		Email:     email,
		Password:  "irrelevant",
		RoleID:    roleID,
		CreateAt:  &now,
	}
	if expertise != "" {
		user.Expertise = &expertise
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return &user
}

func seedTrack(t *testing.T, db *gorm.DB, name string) *models.Track {
	t.Helper()
	conference := models.Conference{
		Name:     "International Conference on Testing",
		Acronym:  "ICT",
		CreateAt: time.Now(),
	}
	if err := db.Create(&conference).Error; err != nil {
		t.Fatalf("failed to seed conference: %v", err)
	}
	track := models.Track{
		ConferenceID: conference.ConferenceID,
		Name:         name,
		CreateAt:     time.Now(),
	}
	if err := db.Create(&track).Error; err != nil {
		t.Fatalf("failed to seed track: %v", err)
	}
	return &track
}

func seedSubmission(t *testing.T, db *gorm.DB, authorID int, track *models.Track, title string) *models.Submission {
	t.Helper()
	service := NewSubmissionService(db)
	submission, err := service.CreateSubmission(authorID, SubmissionInput{
		Title:        title,
		Abstract:     "An abstract.",
		Keywords:     []string{"testing"},
		FileURL:      "/uploads/paper.pdf",
		TrackID:      track.TrackID,
		ConferenceID: track.ConferenceID,
	})
	if err != nil {
		t.Fatalf("failed to seed submission: %v", err)
	}
	return submission
}

func acceptBid(t *testing.T, db *gorm.DB, reviewerID, submissionID int) {
	t.Helper()
	result := db.Model(&models.Bid{}).
		Where("reviewer_id = ? AND submission_id = ?", reviewerID, submissionID).
		Update("status", models.BidAccepted)
	if result.Error != nil {
		t.Fatalf("failed to accept bid: %v", result.Error)
	}
	if result.RowsAffected != 1 {
		t.Fatalf("expected one bid to accept, got %d", result.RowsAffected)
	}
}

func reloadSubmission(t *testing.T, db *gorm.DB, submissionID int) *models.Submission {
	t.Helper()
	var submission models.Submission
	if err := db.First(&submission, submissionID).Error; err != nil {
		t.Fatalf("failed to reload submission %d: %v", submissionID, err)
	}
	return &submission
}
