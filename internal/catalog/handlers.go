package catalog

import (
	"errors"
	"strings"

	"backend-chillwalk/internal/route"
	"backend-chillwalk/internal/shared/geo"
	"backend-chillwalk/internal/shared/validate"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		criteria, err := route.ParseCriteria(func(key string) string {
			v := c.Query(key)
			if key == "season" && strings.EqualFold(strings.TrimSpace(v), "current") {
				return string(svc.CurrentSeason())
			}
			return v
		})
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		key, err := route.ParseSortKey(c.Query("sort"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		routes, err := svc.Search(c.Context(), criteria, key)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(routes)
	})

	r.Get("/recommended", func(c *fiber.Ctx) error {
		routes, err := svc.Recommended(c.Context())
		if err != nil {
			return httpError(err)
		}
		return c.JSON(routes)
	})

	r.Get("/ranking", func(c *fiber.Ctx) error {
		metric, err := route.ParseMetric(c.Query("by"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ranking, err := svc.Ranking(c.Context(), metric)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(ranking)
	})

	r.Get("/seasonal", func(c *fiber.Ctx) error {
		groups, err := svc.Seasonal(c.Context())
		if err != nil {
			return httpError(err)
		}
		return c.JSON(fiber.Map{"current": svc.CurrentSeason(), "groups": groups})
	})

	r.Post("/import", authMiddleware, func(c *fiber.Ctx) error {
		meta, err := importMeta(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		created, err := svc.ImportGPX(c.Context(), userID(c), c.Body(), meta)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		rt, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(rt)
	})

	r.Get("/:id/map", func(c *fiber.Ctx) error {
		view, err := svc.MapView(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(view)
	})

	r.Get("/:id/gpx", func(c *fiber.Ctx) error {
		rt, data, err := svc.ExportGPX(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		c.Set(fiber.HeaderContentType, "application/gpx+xml")
		c.Attachment("route-" + rt.ID + ".gpx")
		return c.Send(data)
	})

	r.Post("/:id/like", authMiddleware, func(c *fiber.Ctx) error {
		likes, err := svc.Like(c.Context(), c.Params("id"), userID(c))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(fiber.Map{"route_id": c.Params("id"), "likes": likes})
	})

	r.Post("/:id/spots", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Name        string    `json:"name" validate:"required"`
			Type        string    `json:"type"`
			Location    geo.Point `json:"location"`
			Description string    `json:"description"`
			Rating      *float64  `json:"rating" validate:"omitempty,min=0,max=5"`
			Tags        []string  `json:"tags"`
			OpenHours   string    `json:"open_hours"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		typ := route.Other
		if body.Type != "" {
			var err error
			if typ, err = route.ParseSpotType(body.Type); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		spot, err := svc.AddSpot(c.Context(), c.Params("id"), route.Spot{
			Name:        body.Name,
			Type:        typ,
			Location:    body.Location,
			Description: body.Description,
			Rating:      body.Rating,
			Tags:        body.Tags,
			OpenHours:   body.OpenHours,
		})
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(spot)
	})

	r.Post("/:id/cover", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			ImageURL string `json:"image_url" validate:"required,url"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := svc.SetCover(c.Context(), c.Params("id"), userID(c), body.ImageURL); err != nil {
			return httpError(err)
		}
		return c.JSON(fiber.Map{"route_id": c.Params("id"), "image_url": body.ImageURL})
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id"), userID(c)); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// importMeta reads optional overrides for an imported GPX track from the query string.
func importMeta(c *fiber.Ctx) (ImportMeta, error) {
	meta := ImportMeta{Name: c.Query("name"), Description: c.Query("description")}
	var err error
	if meta.Difficulty, err = route.ParseDifficulty(c.Query("difficulty")); err != nil {
		return ImportMeta{}, err
	}
	if meta.Seasons, err = route.ParseSeasons(splitList(c.Query("season"))); err != nil {
		return ImportMeta{}, err
	}
	if meta.Temperatures, err = route.ParseTemperatures(splitList(c.Query("temperature"))); err != nil {
		return ImportMeta{}, err
	}
	return meta, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrInvalid):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrReadOnly):
		return fiber.NewError(fiber.StatusNotImplemented, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
