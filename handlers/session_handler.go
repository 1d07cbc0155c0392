package handlers

import (
	"errors"
	"fmt"

	"github.com/learnlab/learnlab-backend/database"
	"github.com/learnlab/learnlab-backend/models"
	"github.com/learnlab/learnlab-backend/notifications"
	"github.com/learnlab/learnlab-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	MentorID  string `json:"mentor_id" validate:"required,uuid"`
	Subject   string `json:"subject" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	Duration  int    `json:"duration_minutes" validate:"required,gt=0"`
	Notes     string `json:"notes,omitempty"`
}

func CreateSession(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	studentID, _ := uuid.Parse(claims["user_id"].(string))

	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	mentorID, _ := uuid.Parse(req.MentorID)

	svc := services.NewSessionService(services.NewGormSessionStore(database.DB))
	session, err := svc.Book(services.BookSessionInput{
		StudentID: studentID,
		MentorID:  mentorID,
		Subject:   req.Subject,
		Date:      req.Date,
		StartTime: req.StartTime,
		Duration:  req.Duration,
		Notes:     req.Notes,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var mentor models.User
	if err := database.DB.First(&mentor, "id = ?", mentorID).Error; err == nil {
		go notifications.SendEmail(mentor.FullName, mentor.Email, "You Have a New Session!",
			fmt.Sprintf("<h1>New Session Booked</h1><p>A student has booked a %s session with you on %s at %s.</p>", session.Subject, session.Date, session.StartTime))
	}

	publishEvent("sessions", "INSERT", session.StudentID, session)
	publishEvent("sessions", "INSERT", session.MentorID, session)

	return c.Status(fiber.StatusCreated).JSON(session)
}

func GetMySessions(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	studentID, _ := uuid.Parse(claims["user_id"].(string))

	var sessions []models.Session
	database.DB.
		Preload("Mentor").
		Where("student_id = ?", studentID).
		Order("date desc, start_time desc").
		Find(&sessions)

	return c.JSON(sessions)
}

func GetMentorSessions(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	mentorID, _ := uuid.Parse(claims["user_id"].(string))

	var sessions []models.Session
	database.DB.
		Preload("Student").
		Where("mentor_id = ?", mentorID).
		Order("date desc, start_time desc").
		Find(&sessions)

	return c.JSON(sessions)
}

type UpdateSessionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled completed cancelled"`
}

func UpdateSessionStatus(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	actorID, _ := uuid.Parse(claims["user_id"].(string))
	actorRole := claims["role"].(string)
	sessionID, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID"})
	}

	var req UpdateSessionStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	svc := services.NewSessionService(services.NewGormSessionStore(database.DB))
	session, err := svc.Transition(sessionID, actorID, actorRole, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrNotSessionMentor), errors.Is(err, services.ErrNotParticipant):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrSessionFinalized):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	publishEvent("sessions", "UPDATE", session.StudentID, session)
	publishEvent("sessions", "UPDATE", session.MentorID, session)

	if req.Status == "completed" {
		var earning models.Earning
		if err := database.DB.Where("session_id = ?", session.ID).First(&earning).Error; err == nil {
			publishEvent("earnings", "INSERT", earning.MentorID, earning)
		}

		var student models.User
		if err := database.DB.First(&student, "id = ?", session.StudentID).Error; err == nil {
			go notifications.SendEmail(student.FullName, student.Email, "Session Completed",
				fmt.Sprintf("<h1>Session Completed</h1><p>Your %s session has been marked as completed. We hope it went well!</p>", session.Subject))
		}
	}

	return c.JSON(fiber.Map{"message": "Session status updated", "session": session})
}
