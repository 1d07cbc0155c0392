package handlers

import (
	"strconv"
	"time"

	"github.com/learnlab/learnlab-backend/database"
	"github.com/learnlab/learnlab-backend/models"
	"github.com/gofiber/fiber/v2"
)

func GetAllUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))
	offset := (page - 1) * pageSize

	query := database.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("full_name ILIKE ? OR email ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Order("created_at desc").Limit(pageSize).Offset(offset).Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(fiber.Map{"users": users, "total": total, "page": page})
}

// AdminUpdateUser is the only path that may change a user's role after
// creation.
func AdminUpdateUser(c *fiber.Ctx) error {
	userID := c.Params("userId")

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	type UpdateRequest struct {
		FullName   *string  `json:"full_name"`
		Role       *string  `json:"role" validate:"omitempty,oneof=student mentor admin"`
		HourlyRate *float64 `json:"hourly_rate"`
		IsActive   *bool    `json:"is_active"`
	}
	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.HourlyRate != nil {
		user.HourlyRate = *req.HourlyRate
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}

	return c.JSON(user)
}

func AdminDeleteUser(c *fiber.Ctx) error {
	userID := c.Params("userId")

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if user.Role == "admin" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Admin accounts cannot be deleted"})
	}

	if err := database.DB.Delete(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete user"})
	}

	return c.JSON(fiber.Map{"message": "User deleted"})
}

func AdminGetAllSessions(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))
	offset := (page - 1) * pageSize

	query := database.DB.Model(&models.Session{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var sessions []models.Session
	if err := query.Preload("Student").Preload("Mentor").
		Order("created_at desc").Limit(pageSize).Offset(offset).
		Find(&sessions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(fiber.Map{"sessions": sessions, "total": total, "page": page})
}

func AdminListEarnings(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Earning{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var earnings []models.Earning
	if err := query.Preload("Session").Order("created_at desc").Find(&earnings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(earnings)
}

func MarkEarningPaid(c *fiber.Ctx) error {
	earningID := c.Params("earningId")

	var earning models.Earning
	if err := database.DB.First(&earning, "id = ?", earningID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Earning not found"})
	}
	if earning.Status == "paid" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Earning is already paid"})
	}

	now := time.Now()
	earning.Status = "paid"
	earning.PaidAt = &now
	if err := database.DB.Save(&earning).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to mark earning as paid"})
	}

	publishEvent("earnings", "UPDATE", earning.MentorID, earning)

	return c.JSON(fiber.Map{"message": "Earning marked as paid", "earning": earning})
}

func GetDashboardAnalytics(c *fiber.Ctx) error {
	var totalStudents, totalMentors, totalSessions, completedSessions int64
	database.DB.Model(&models.User{}).Where("role = ?", "student").Count(&totalStudents)
	database.DB.Model(&models.User{}).Where("role = ?", "mentor").Count(&totalMentors)
	database.DB.Model(&models.Session{}).Count(&totalSessions)
	database.DB.Model(&models.Session{}).Where("status = ?", "completed").Count(&completedSessions)

	var sessionRevenue float64
	database.DB.Model(&models.Session{}).Where("status = ?", "completed").
		Select("COALESCE(SUM(amount), 0)").Scan(&sessionRevenue)

	var enrollmentRevenue float64
	database.DB.Model(&models.Enrollment{}).Where("payment_status = ?", "completed").
		Select("COALESCE(SUM(amount_paid), 0)").Scan(&enrollmentRevenue)

	var pendingEarnings float64
	database.DB.Model(&models.Earning{}).Where("status = ?", "pending").
		Select("COALESCE(SUM(amount), 0)").Scan(&pendingEarnings)

	var activeEnrollments int64
	database.DB.Model(&models.Enrollment{}).Where("is_active = ?", true).Count(&activeEnrollments)

	return c.JSON(fiber.Map{
		"total_students":     totalStudents,
		"total_mentors":      totalMentors,
		"total_sessions":     totalSessions,
		"completed_sessions": completedSessions,
		"session_revenue":    sessionRevenue,
		"enrollment_revenue": enrollmentRevenue,
		"pending_earnings":   pendingEarnings,
		"active_enrollments": activeEnrollments,
	})
}
