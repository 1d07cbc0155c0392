package database

import (
	"fmt"
	"log"

	config "github.com/learnlab/learnlab-backend/configs"
	"github.com/learnlab/learnlab-backend/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:                              false,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		// Maps unique violations to gorm.ErrDuplicatedKey so handlers can
		// answer duplicate registrations with 409 instead of 500.
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Earning{},
		&models.Message{},
		&models.Program{},
		&models.Enrollment{},
		&models.FileRecord{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		FullName: config.Config("ADMIN_FULL_NAME"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     "admin",
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}

// SeedDemo populates a handful of mentors and programs so a disconnected
// development environment has data to render. Enabled only when
// SEED_DEMO_DATA=true; production paths never substitute sample data.
func SeedDemo() {
	if config.Config("SEED_DEMO_DATA") != "true" {
		return
	}

	var count int64
	DB.Model(&models.User{}).Where("role = ?", "mentor").Count(&count)
	if count > 0 {
		log.Println("Demo data already present, skipping seed.")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("🔥 Failed to hash demo password: %v", err)
		return
	}

	bio := "Seeded demo mentor."
	mentors := []models.User{
		{FullName: "Sarah Chen", Email: "sarah.chen@demo.learnlab.app", Password: string(hashed), Role: "mentor", Bio: &bio, Subjects: []string{"Mathematics", "Physics"}, HourlyRate: 100, Rating: 4.8},
		{FullName: "David Okoye", Email: "david.okoye@demo.learnlab.app", Password: string(hashed), Role: "mentor", Bio: &bio, Subjects: []string{"Programming", "Data Science"}, HourlyRate: 80, Rating: 4.6},
	}
	for i := range mentors {
		if err := DB.Create(&mentors[i]).Error; err != nil {
			log.Printf("🔥 Failed to seed demo mentor: %v", err)
			return
		}
	}

	programs := []models.Program{
		{Title: "Calculus Bootcamp", Description: "Eight weeks of guided calculus sessions.", Price: 299, DurationWeeks: 8, SessionCount: 16, Subjects: []string{"Mathematics"}, Level: "intermediate", IsActive: true, MentorID: &mentors[0].ID},
		{Title: "Intro to Go", Description: "Learn backend development from scratch.", Price: 199, DurationWeeks: 6, SessionCount: 12, Subjects: []string{"Programming"}, Level: "beginner", IsActive: true, MentorID: &mentors[1].ID},
	}
	for i := range programs {
		if err := DB.Create(&programs[i]).Error; err != nil {
			log.Printf("🔥 Failed to seed demo program: %v", err)
			return
		}
	}

	log.Println("✅ Demo data seeded successfully")
}
