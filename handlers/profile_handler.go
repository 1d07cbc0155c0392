package handlers

import (
	"github.com/learnlab/learnlab-backend/database"
	"github.com/learnlab/learnlab-backend/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

type UpdateProfileRequest struct {
	FullName   *string   `json:"full_name"`
	Bio        *string   `json:"bio"`
	Subjects   *[]string `json:"subjects"`
	HourlyRate *float64  `json:"hourly_rate"`
	AvatarURL  *string   `json:"avatar_url"`
	TimeZone   *string   `json:"time_zone"`
}

func GetProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(user)
}

func UpdateProfile(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID := claims["user_id"].(string)

	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.Subjects != nil {
		user.Subjects = *req.Subjects
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Hourly rate cannot be negative"})
		}
		user.HourlyRate = *req.HourlyRate
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}
	if req.TimeZone != nil {
		user.TimeZone = req.TimeZone
	}

	database.DB.Save(&user)

	return c.JSON(user)
}

func ListMentors(c *fiber.Ctx) error {
	subject := c.Query("subject")

	var mentors []models.User
	query := database.DB.Where("role = ? AND is_active = ?", "mentor", true)
	if subject != "" {
		query = query.Where("subjects::text ILIKE ?", "%"+subject+"%")
	}
	if err := query.Order("rating desc").Find(&mentors).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch mentors"})
	}

	return c.JSON(mentors)
}

func GetMentor(c *fiber.Ctx) error {
	mentorID := c.Params("mentorId")

	var mentor models.User
	if err := database.DB.Where("id = ? AND role = ?", mentorID, "mentor").First(&mentor).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Mentor not found"})
	}

	return c.JSON(mentor)
}
