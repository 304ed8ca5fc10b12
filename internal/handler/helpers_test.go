package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/qazaq-teachers/internal/service"
)

func TestClampScore(t *testing.T) {
	cases := []struct {
		score, points, want int
	}{
		{score: 7, points: 10, want: 7},
		{score: 15, points: 10, want: 10},
		{score: -3, points: 10, want: 0},
		{score: 0, points: 0, want: 0},
		{score: 10, points: 10, want: 10},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, clampScore(tc.score, tc.points), "score=%d points=%d", tc.score, tc.points)
	}
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := map[error]int{
		service.ErrAssignmentNotFound:                       http.StatusNotFound,
		service.ErrFileNotFound:                             http.StatusNotFound,
		fmt.Errorf("wrapped: %w", service.ErrClassNotFound): http.StatusNotFound,
		service.ErrDuplicateStudentCode:                     http.StatusConflict,
		service.ErrAssignmentReviewed:                       http.StatusConflict,
		service.ErrInvalidCredentials:                       http.StatusUnauthorized,
		service.ErrFileTooLarge:                             http.StatusRequestEntityTooLarge,
		service.ErrForbidden:                                http.StatusForbidden,
		errors.New("database exploded"):                     http.StatusInternalServerError,
	}

	for err, want := range cases {
		app := fiber.New()
		failure := err
		app.Get("/", func(c *fiber.Ctx) error {
			return respondError(c, zerolog.Nop(), failure)
		})

		resp, testErr := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, testErr)
		require.Equal(t, want, resp.StatusCode, err.Error())
	}
}

func TestParseUintParamRejectsZero(t *testing.T) {
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := parseUintParam(c, "id")
		if err != nil {
			return badRequest(c, err.Error())
		}
		return c.JSON(fiber.Map{"id": id})
	})

	for path, want := range map[string]int{
		"/items/42":  http.StatusOK,
		"/items/0":   http.StatusBadRequest,
		"/items/abc": http.StatusBadRequest,
		"/items/-1":  http.StatusBadRequest,
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		require.Equal(t, want, resp.StatusCode, path)
	}
}

func TestParseBodyAcceptsEmptyBody(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		payload := struct {
			Name string `json:"name"`
		}{Name: "unchanged"}
		if err := parseBody(c, &payload); err != nil {
			return badRequest(c, err.Error())
		}
		return c.SendString(payload.Name)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
