package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/iliyamo/event-bed-booking/internal/model"
	"github.com/iliyamo/event-bed-booking/internal/repository"
	"github.com/iliyamo/event-bed-booking/internal/tenant"
)

type stubEvents map[string]uint64

func (s stubEvents) GetActiveBySlug(_ context.Context, slug string) (*model.Event, error) {
	if slug == "broken" {
		return nil, errors.New("connection refused")
	}
	id, ok := s[slug]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	return &model.Event{ID: id, Slug: slug}, nil
}

func TestResolveEvent(t *testing.T) {
	res := tenant.NewResolver(stubEvents{"camp": 5}, nil, 0, zap.NewNop())
	e := echo.New()
	e.GET("/v1/events/:event/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"event_id": c.Get(EventIDKey)})
	}, ResolveEvent(res, zap.NewNop()))

	tests := []struct {
		slug string
		code int
	}{
		{"camp", http.StatusOK},
		{"unknown", http.StatusNotFound},
		{"broken", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events/"+tt.slug+"/ping", nil))
			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK {
				assert.JSONEq(t, `{"event_id":5}`, rec.Body.String())
			}
		})
	}
}
