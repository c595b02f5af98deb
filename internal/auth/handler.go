package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/domain/user"
	"storefront/internal/httpx"
)

type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (user.User, error)
	ByEmail(ctx context.Context, email string) (user.User, error)
	ByID(ctx context.Context, id int64) (user.User, error)
}

type RefreshStore interface {
	Store(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error
	IsValid(ctx context.Context, userID int64, tokenHash string) (bool, error)
	Revoke(ctx context.Context, userID int64, tokenHash string) error
}

type Dependencies struct {
	JWT     *JWTManager
	Users   UserStore
	Refresh RefreshStore
	Log     *slog.Logger
}

type Handler struct {
	deps Dependencies
}

func NewHandler(d Dependencies) *Handler {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &Handler{deps: d}
}

type registerReq struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
}

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, apperr.Wrap(apperr.InvalidArgument, "invalid registration data", err))
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	pwHash, err := HashPassword(req.Password)
	if err != nil {
		h.deps.Log.Error("password hash failed", "err", err)
		httpx.Fail(c, err)
		return
	}

	_, err = h.deps.Users.Create(c.Request.Context(), strings.TrimSpace(req.Name), req.Email, pwHash, user.RoleCustomer)
	if err != nil {
		if apperr.KindOf(err) == apperr.Unavailable {
			h.deps.Log.Error("user create failed", "err", err)
		}
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "account created"})
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, apperr.Wrap(apperr.InvalidArgument, "invalid login data", err))
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	u, err := h.deps.Users.ByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			httpx.Fail(c, apperr.New(apperr.Unauthorized, "invalid credentials"))
			return
		}
		h.deps.Log.Error("user lookup failed", "err", err)
		httpx.Fail(c, err)
		return
	}

	if !CheckPassword(u.PasswordHash, req.Password) {
		httpx.Fail(c, apperr.New(apperr.Unauthorized, "invalid credentials"))
		return
	}

	// Only customers may use this client.
	if u.Role != user.RoleCustomer {
		httpx.Fail(c, apperr.New(apperr.Unauthorized, "not authorized to login as a customer"))
		return
	}

	access, accessExp, err := h.deps.JWT.SignAccess(u.ID, u.Role)
	if err != nil {
		h.deps.Log.Error("access token sign failed", "err", err)
		httpx.Fail(c, err)
		return
	}
	refresh, refreshExp, err := h.deps.JWT.SignRefresh(u.ID, u.Role)
	if err != nil {
		h.deps.Log.Error("refresh token sign failed", "err", err)
		httpx.Fail(c, err)
		return
	}
	if err := h.deps.Refresh.Store(c.Request.Context(), u.ID, HashToken(refresh), refreshExp); err != nil {
		h.deps.Log.Error("refresh token store failed", "err", err)
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"user":          u,
		"access_token":  access,
		"access_exp":    accessExp,
		"refresh_token": refresh,
		"refresh_exp":   refreshExp,
	})
}

// Refresh rotates the refresh token: the presented token is revoked and a new
// pair is issued.
func (h *Handler) Refresh(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, apperr.Wrap(apperr.InvalidArgument, "refresh_token is required", err))
		return
	}

	claims, err := h.deps.JWT.ParseRefresh(req.RefreshToken)
	if err != nil {
		httpx.Fail(c, apperr.New(apperr.Unauthorized, "invalid refresh token"))
		return
	}

	ok, err := h.deps.Refresh.IsValid(c.Request.Context(), claims.UserID, HashToken(req.RefreshToken))
	if err != nil {
		h.deps.Log.Error("refresh token check failed", "err", err)
		httpx.Fail(c, err)
		return
	}
	if !ok {
		httpx.Fail(c, apperr.New(apperr.Unauthorized, "refresh token expired or revoked"))
		return
	}

	_ = h.deps.Refresh.Revoke(c.Request.Context(), claims.UserID, HashToken(req.RefreshToken))

	access, accessExp, _ := h.deps.JWT.SignAccess(claims.UserID, claims.Role)
	newRefresh, refreshExp, _ := h.deps.JWT.SignRefresh(claims.UserID, claims.Role)
	if err := h.deps.Refresh.Store(c.Request.Context(), claims.UserID, HashToken(newRefresh), refreshExp); err != nil {
		h.deps.Log.Error("refresh token store failed", "err", err)
		httpx.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"access_token":  access,
		"access_exp":    accessExp,
		"refresh_token": newRefresh,
		"refresh_exp":   refreshExp,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	var req refreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, apperr.Wrap(apperr.InvalidArgument, "refresh_token is required", err))
		return
	}
	claims, err := h.deps.JWT.ParseRefresh(req.RefreshToken)
	if err == nil {
		_ = h.deps.Refresh.Revoke(c.Request.Context(), claims.UserID, HashToken(req.RefreshToken))
	}
	httpx.Message(c, "logged out")
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.deps.Users.ByID(c.Request.Context(), UserID(c))
	if err != nil {
		httpx.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}
