package session

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Post("/", func(c *fiber.Ctx) error {
		var req CreateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}

		sess, err := svc.Create(c.Context(), req)
		if errors.Is(err, ErrNameRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "customerName is required"})
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.JSON(fiber.Map{
			"success":     true,
			"session":     sess,
			"trackingUrl": TrackingURL(sess.SessionID),
		})
	})

	r.Get("/", func(c *fiber.Ctx) error {
		sessionID := c.Query("sessionId")
		if sessionID == "" {
			sessions, err := svc.ListActive(c.Context())
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
			if sessions == nil {
				sessions = []Session{}
			}
			return c.JSON(fiber.Map{"sessions": sessions})
		}

		sess, err := svc.Get(c.Context(), sessionID)
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(sess)
	})
}
