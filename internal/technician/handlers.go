package technician

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req PublishRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}

		rec, err := svc.Publish(c.Context(), req)
		if errors.Is(err, ErrTechnicianRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "technicianId is required"})
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"success": true, "received": rec})
	})

	r.Get("/", func(c *fiber.Ctx) error {
		technicianID := c.Query("technicianId")
		if technicianID == "" {
			recs, err := svc.List(c.Context())
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
			if recs == nil {
				recs = []Record{}
			}
			return c.JSON(fiber.Map{"technicians": recs})
		}

		rec, err := svc.Get(c.Context(), technicianID)
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Technician not found", "online": false})
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(rec)
	})
}
