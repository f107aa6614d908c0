package handler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"mediafeed/internal/http/middleware"
	"mediafeed/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// auth protects every post/feed route; health, liveness and the API docs
// stay public. Handlers stay free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, postSvc service.PostService, auth fiber.Handler) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	// Health endpoint: checks DB connectivity only
	app.Get("/health", HealthCheck(db))

	// Simple liveness probe
	app.Get("/healthz", LivenessProbe())

	// Publish a post (multipart/form-data: file, optional caption)
	app.Post("/posts", auth, UploadPost(postSvc))

	// Reverse-chronological feed annotated per viewer
	app.Get("/feed", auth, ListFeed(postSvc))

	// Delete an owned post
	app.Delete("/posts/:id", auth, DeletePost(postSvc))
}

// HealthCheck pings the database with a short timeout.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always reports OK while the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// UploadPost handles multipart uploads (field name: file, optional caption field).
func UploadPost(postSvc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident, ok := middleware.IdentityFromCtx(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthenticated")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		// Content type may be empty or malformed; the service defaults to image.
		ct := fh.Header.Get("Content-Type")
		caption := c.FormValue("caption", "")

		post, err := postSvc.Publish(c.UserContext(), ident, f, fh.Filename, ct, caption)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "UPLOAD_FAILED", "upload failed")
		}
		return c.Status(fiber.StatusCreated).JSON(post)
	}
}

// ListFeed returns all posts, newest first, annotated for the caller.
func ListFeed(postSvc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident, ok := middleware.IdentityFromCtx(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthenticated")
		}

		entries, err := postSvc.Feed(c.UserContext(), ident)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "FEED_FAILED", "feed unavailable")
		}
		return c.JSON(entries)
	}
}

// DeletePost removes a post if the caller owns it.
func DeletePost(postSvc service.PostService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident, ok := middleware.IdentityFromCtx(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthenticated")
		}

		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}

		if err := postSvc.Delete(c.UserContext(), ident, id); err != nil {
			switch {
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "post not found")
			case errors.Is(err, service.ErrForbidden):
				return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "post is not owned by caller")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
