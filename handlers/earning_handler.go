package handlers

import (
	"github.com/learnlab/learnlab-backend/database"
	"github.com/learnlab/learnlab-backend/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func GetMyEarnings(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	mentorID, _ := uuid.Parse(claims["user_id"].(string))

	var earnings []models.Earning
	database.DB.
		Preload("Session").
		Where("mentor_id = ?", mentorID).
		Order("created_at desc").
		Find(&earnings)

	var pendingTotal, paidTotal float64
	for _, e := range earnings {
		if e.Status == "paid" {
			paidTotal += e.Amount
		} else {
			pendingTotal += e.Amount
		}
	}

	return c.JSON(fiber.Map{
		"earnings":      earnings,
		"pending_total": pendingTotal,
		"paid_total":    paidTotal,
	})
}
