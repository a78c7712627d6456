// Provisioning script for organizer accounts
// cmd/create-organizer/main.go
package main

import (
	"conference-review-api/config"
	"conference-review-api/models"
	"conference-review-api/utils"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	email := flag.String("email", "", "organizer email address")
	password := flag.String("password", "", "initial password")
	fname := flag.String("fname", "Program", "first name")
	lname := flag.String("lname", "Chair", "last name")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("Usage: create-organizer -email chair@conf.org -password <secret> [-fname F] [-lname L]")
	}
	if !utils.ValidateEmail(*email) {
		log.Fatal("Invalid email address")
	}
	if ok, reason := utils.ValidatePassword(*password); !ok {
		log.Fatal(reason)
	}

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize database
	config.InitDB()

	var existing int64
	if err := config.DB.Model(&models.User{}).
		Where("email = ? AND delete_at IS NULL", *email).
		Count(&existing).Error; err != nil {
		log.Fatal("Failed to check existing users:", err)
	}
	if existing > 0 {
		log.Fatalf("User %s already exists", *email)
	}

	hashedPassword, err := utils.HashPassword(*password)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	now := time.Now()
	organizer := models.User{
		UserFname: *fname,
		UserLname: *lname,
		Email:     *email,
		Password:  hashedPassword,
		RoleID:    models.RoleOrganizer,
		CreateAt:  &now,
	}
	if err := config.DB.Create(&organizer).Error; err != nil {
		log.Fatal("Failed to create organizer:", err)
	}

	log.Printf("Created organizer account %s (user_id=%d)\n", organizer.Email, organizer.UserID)
}
