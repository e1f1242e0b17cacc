package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/event-bed-booking/internal/config"
	"github.com/iliyamo/event-bed-booking/internal/utils"
)

func setupAuthAPI(t *testing.T) *echo.Echo {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	h := NewAuthHandler(config.Config{
		JWTSecret:         "jwt-secret",
		AccessTTLMin:      15,
		AdminUser:         "organizer",
		AdminPasswordHash: string(hash),
	}, zap.NewNop())
	e := echo.New()
	e.POST("/v1/admin/login", h.Login)
	return e
}

func TestLogin(t *testing.T) {
	e := setupAuthAPI(t)

	rec := call(e, http.MethodPost, "/v1/admin/login", `{"username":"organizer","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp tokenResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, utils.RoleAdmin, resp.Role)
}

func TestLogin_Rejected(t *testing.T) {
	e := setupAuthAPI(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"wrong password", `{"username":"organizer","password":"nope"}`, http.StatusUnauthorized},
		{"wrong user", `{"username":"someone","password":"s3cret"}`, http.StatusUnauthorized},
		{"missing fields", `{"username":"organizer"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, call(e, http.MethodPost, "/v1/admin/login", tt.body).Code)
		})
	}
}
