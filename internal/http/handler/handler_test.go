package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"mediafeed/internal/http/middleware"
	"mediafeed/internal/model"
	"mediafeed/internal/service"
	serviceMocks "mediafeed/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testIdentity = model.Identity{ID: "user-1", Email: "u1@example.com"}

// stubAuth injects a fixed identity, standing in for the JWT middleware.
func stubAuth(ident model.Identity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.IdentityLocalKey, ident)
		return c.Next()
	}
}

func multipartBody(t *testing.T, field, filename, contentType string, payload []byte, caption string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)

	if caption != "" {
		require.NoError(t, writer.WriteField("caption", caption))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUploadPost(t *testing.T) {
	mockSvc := new(serviceMocks.MockPostService)
	app := fiber.New()
	app.Post("/posts", stubAuth(testIdentity), UploadPost(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "cat.jpg", "image/jpeg", []byte("binary"), "hi")

		expectedPost := &model.Post{
			ID:       uuid.New().String(),
			UserID:   testIdentity.ID,
			Caption:  "hi",
			URL:      "http://cdn.local/media/posts/x.jpg",
			FileType: model.FileTypeImage,
			FileName: "posts/x.jpg",
		}
		mockSvc.On("Publish", mock.Anything, testIdentity, mock.Anything, "cat.jpg", "image/jpeg", "hi").
			Return(expectedPost, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/posts", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Post
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expectedPost.ID, result.ID)
		assert.Equal(t, model.FileTypeImage, result.FileType)
		assert.Equal(t, "hi", result.Caption)
		assert.NotEmpty(t, result.URL)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/posts", nil)
		// Missing content-type and body
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "cat.jpg", "image/jpeg", []byte("binary"), "")

		mockSvc.On("Publish", mock.Anything, testIdentity, mock.Anything, "cat.jpg", "image/jpeg", "").
			Return(nil, errors.New("upload failed")).Once()

		req := httptest.NewRequest(http.MethodPost, "/posts", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UPLOAD_FAILED", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		bare := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
		bare.Post("/posts", UploadPost(mockSvc))

		body, ct := multipartBody(t, "file", "cat.jpg", "image/jpeg", []byte("binary"), "")
		req := httptest.NewRequest(http.MethodPost, "/posts", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := bare.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UNAUTHENTICATED", res.Error.Code)
	})
}

func TestListFeed(t *testing.T) {
	mockSvc := new(serviceMocks.MockPostService)
	app := fiber.New()
	app.Get("/feed", stubAuth(testIdentity), ListFeed(mockSvc))

	t.Run("success", func(t *testing.T) {
		entries := []model.FeedEntry{
			{
				Post:        model.Post{ID: uuid.New().String(), UserID: testIdentity.ID, Caption: "hi"},
				AuthorEmail: testIdentity.Email,
				IsOwner:     true,
			},
			{
				Post:        model.Post{ID: uuid.New().String(), UserID: "user-2"},
				AuthorEmail: "u2@example.com",
				IsOwner:     false,
			},
		}
		mockSvc.On("Feed", mock.Anything, testIdentity).Return(entries, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/feed", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result []model.FeedEntry
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result, 2)
		assert.True(t, result[0].IsOwner)
		assert.False(t, result[1].IsOwner)
		assert.Equal(t, "u2@example.com", result[1].AuthorEmail)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Feed", mock.Anything, testIdentity).Return(nil, errors.New("db fail")).Once()

		req := httptest.NewRequest(http.MethodGet, "/feed", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FEED_FAILED", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeletePost(t *testing.T) {
	mockSvc := new(serviceMocks.MockPostService)
	app := fiber.New()
	app.Delete("/posts/:id", stubAuth(testIdentity), DeletePost(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, testIdentity, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/posts/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, testIdentity, id).Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/posts/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("forbidden", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, testIdentity, id).Return(service.ErrForbidden).Once()

		req := httptest.NewRequest(http.MethodDelete, "/posts/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FORBIDDEN", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/posts/not-a-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_ID", res.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, testIdentity, id).Return(errors.New("delete error")).Once()

		req := httptest.NewRequest(http.MethodDelete, "/posts/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockPostService)
	// Register all routes with a stubbed auth middleware
	RegisterRoutes(app, nil, mockSvc, stubAuth(testIdentity))

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		// Fiber returns 405 by default if route exists but method doesn't match
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})
}
