// Package main seeds the database with demo accounts, students and tuitions.
package main

import (
	"log"

	"ibank/internal/config"
	"ibank/internal/models"
	"ibank/internal/repositories"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	config.LoadEnv()

	if err := repositories.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	db := repositories.DB

	seedUsers(db)
	seedStudents(db)

	log.Println("Seed completed")
}

func seedUsers(db *gorm.DB) {
	users := []struct {
		Username string
		Password string
		FullName string
		Phone    string
		Email    string
		Balance  int64
	}{
		{"alice", "alice123", "Alice Nguyen", "+84901000001", "alice@example.com", 50_000_000},
		{"bob", "bob123", "Bob Tran", "+84901000002", "bob@example.com", 1_000_000},
	}

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("Failed to hash password for %s: %v", u.Username, err)
		}

		user := models.User{
			Username:     u.Username,
			Password:     string(hash),
			FullName:     u.FullName,
			Phone:        u.Phone,
			Email:        u.Email,
			BalanceCents: u.Balance,
		}
		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoNothing: true,
		}).Create(&user).Error
		if err != nil {
			log.Fatalf("Failed to seed user %s: %v", u.Username, err)
		}
	}
	log.Println("Seeded users")
}

func seedStudents(db *gorm.DB) {
	students := []models.Student{
		{
			MSSV:     "SV001",
			FullName: "Nguyen Van A",
			Tuitions: []models.Tuition{
				{AcademicYear: 2025, Semester: 1, AmountCents: 12_500_000, Description: "Tuition 2025 semester 1"},
				{AcademicYear: 2024, Semester: 2, AmountCents: 11_800_000, Description: "Tuition 2024 semester 2"},
			},
		},
		{
			// Combined billing: all pending tuitions must be paid together.
			MSSV:            "SV002",
			FullName:        "Tran Thi B",
			CombinedBilling: true,
			Tuitions: []models.Tuition{
				{AcademicYear: 2025, Semester: 1, AmountCents: 12_500_000, Description: "Tuition 2025 semester 1"},
				{AcademicYear: 2024, Semester: 2, AmountCents: 11_800_000, Description: "Tuition 2024 semester 2"},
				{AcademicYear: 2024, Semester: 1, AmountCents: 11_800_000, Description: "Tuition 2024 semester 1"},
			},
		},
		{
			MSSV:     "SV003",
			FullName: "Le Van C",
		},
	}

	for i := range students {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "mssv"}},
			DoNothing: true,
		}).Create(&students[i]).Error
		if err != nil {
			log.Fatalf("Failed to seed student %s: %v", students[i].MSSV, err)
		}
	}
	log.Println("Seeded students")
}
