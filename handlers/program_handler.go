package handlers

import (
	"github.com/learnlab/learnlab-backend/database"
	"github.com/learnlab/learnlab-backend/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type ProgramRequest struct {
	Title         string   `json:"title" validate:"required,min=3"`
	Description   string   `json:"description"`
	Price         float64  `json:"price" validate:"required,gt=0"`
	DurationWeeks int      `json:"duration_weeks" validate:"required,gt=0"`
	SessionCount  int      `json:"session_count" validate:"required,gt=0"`
	Subjects      []string `json:"subjects"`
	Level         string   `json:"level" validate:"required,oneof=beginner intermediate advanced"`
}

func ListPrograms(c *fiber.Ctx) error {
	var programs []models.Program
	if err := database.DB.Preload("Mentor").Where("is_active = ?", true).Order("created_at desc").Find(&programs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch programs"})
	}
	return c.JSON(programs)
}

func GetProgram(c *fiber.Ctx) error {
	programID := c.Params("programId")

	var program models.Program
	if err := database.DB.Preload("Mentor").First(&program, "id = ?", programID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Program not found"})
	}
	return c.JSON(program)
}

func CreateProgram(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	role := claims["role"].(string)

	if role != "mentor" && role != "admin" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only mentors can create programs"})
	}

	var req ProgramRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	program := models.Program{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		DurationWeeks: req.DurationWeeks,
		SessionCount:  req.SessionCount,
		Subjects:      req.Subjects,
		Level:         req.Level,
		IsActive:      true,
		MentorID:      &userID,
	}
	if err := database.DB.Create(&program).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create program"})
	}

	return c.Status(fiber.StatusCreated).JSON(program)
}

func UpdateProgram(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	role := claims["role"].(string)
	programID := c.Params("programId")

	var program models.Program
	if err := database.DB.First(&program, "id = ?", programID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Program not found"})
	}
	if role != "admin" && (program.MentorID == nil || *program.MentorID != userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your program"})
	}

	type UpdateRequest struct {
		Title         *string   `json:"title"`
		Description   *string   `json:"description"`
		Price         *float64  `json:"price"`
		DurationWeeks *int      `json:"duration_weeks"`
		SessionCount  *int      `json:"session_count"`
		Subjects      *[]string `json:"subjects"`
		Level         *string   `json:"level"`
		IsActive      *bool     `json:"is_active"`
	}
	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if req.Title != nil {
		program.Title = *req.Title
	}
	if req.Description != nil {
		program.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Price must be positive"})
		}
		program.Price = *req.Price
	}
	if req.DurationWeeks != nil {
		program.DurationWeeks = *req.DurationWeeks
	}
	if req.SessionCount != nil {
		program.SessionCount = *req.SessionCount
	}
	if req.Subjects != nil {
		program.Subjects = *req.Subjects
	}
	if req.Level != nil {
		program.Level = *req.Level
	}
	if req.IsActive != nil {
		program.IsActive = *req.IsActive
	}

	if err := database.DB.Save(&program).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update program"})
	}

	return c.JSON(program)
}

// DeactivateProgram soft-deletes: existing enrollments keep their reference.
func DeactivateProgram(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))
	role := claims["role"].(string)
	programID := c.Params("programId")

	var program models.Program
	if err := database.DB.First(&program, "id = ?", programID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Program not found"})
	}
	if role != "admin" && (program.MentorID == nil || *program.MentorID != userID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "This is not your program"})
	}

	program.IsActive = false
	if err := database.DB.Save(&program).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to deactivate program"})
	}

	return c.JSON(fiber.Map{"message": "Program deactivated"})
}
