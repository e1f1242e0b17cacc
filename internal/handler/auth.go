package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/event-bed-booking/internal/config"
	"github.com/iliyamo/event-bed-booking/internal/utils"
)

// AuthHandler issues organizer tokens.  There is a single organizer
// account configured through ADMIN_USER / ADMIN_PASSWORD_HASH.
type AuthHandler struct {
	Cfg    config.Config
	Logger *zap.Logger
}

func NewAuthHandler(cfg config.Config, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{Cfg: cfg, Logger: logger}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
	Role    string    `json:"role"`
}

// Login handles POST /v1/admin/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.Cfg.AdminUser)) == 1
	// bcrypt runs even when the username is wrong.
	passOK := utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password)
	if !userOK || !passOK {
		h.Logger.Warn("admin login rejected", zap.String("ip", c.RealIP()))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, req.Username, utils.RoleAdmin, h.Cfg.AccessTTLMin)
	if err != nil {
		h.Logger.Error("issue access token failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, tokenResp{Token: access.Token, Expires: access.Exp, Role: utils.RoleAdmin})
}
