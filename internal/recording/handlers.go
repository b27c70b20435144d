package recording

import (
	"errors"

	"backend-chillwalk/internal/shared/geo"
	"backend-chillwalk/internal/shared/validate"

	"github.com/gofiber/fiber/v2"
)

type fixRequest struct {
	Lat   *float64  `json:"lat"`
	Lng   *float64  `json:"lng"`
	Error *FixError `json:"error"`
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	g := r.Group("", authMiddleware, requireUser)

	g.Post("/start", func(c *fiber.Ctx) error {
		snap, err := svc.Start(userID(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(snap)
	})

	g.Post("/fixes", func(c *fiber.Ctx) error {
		var req fixRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		var fix Fix
		switch {
		case req.Error != nil:
			fix.Err = req.Error
		case req.Lat != nil && req.Lng != nil:
			fix.Point = geo.Point{Lat: *req.Lat, Lng: *req.Lng}
			if err := validate.Struct(fix.Point); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		default:
			return fiber.NewError(fiber.StatusBadRequest, "lat and lng or error required")
		}
		if err := svc.Push(userID(c), fix); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	g.Post("/stop", func(c *fiber.Ctx) error {
		snap, err := svc.Stop(userID(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(snap)
	})

	g.Post("/discard", func(c *fiber.Ctx) error {
		snap, err := svc.Discard(userID(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(snap)
	})

	g.Get("/current", func(c *fiber.Ctx) error {
		snap, err := svc.Current(userID(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(snap)
	})

	g.Post("/save", func(c *fiber.Ctx) error {
		var req SaveRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		created, err := svc.Save(c.Context(), userID(c), req)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})
}

// requireUser rejects requests that reached the group without an authenticated user.
func requireUser(c *fiber.Ctx) error {
	if userID(c) == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "login required to record routes")
	}
	return c.Next()
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrAlreadyRecording), errors.Is(err, ErrNotRecording),
		errors.Is(err, ErrStillRecording), errors.Is(err, ErrNotWatching):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrNoStore):
		return fiber.NewError(fiber.StatusNotImplemented, err.Error())
	case errors.Is(err, ErrClosed):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
