package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/nzeleniuk/contactbook/internal/repository"
)

// AvatarStore is the slice of the user repository this handler needs.
type AvatarStore interface {
    UpdateAvatarURL(ctx context.Context, email, url string) error
}

// UserHandler serves user-profile operations that sit outside the auth
// core, currently only the avatar reference.  The avatar image itself
// lives in external object storage; this endpoint records its URL.
type UserHandler struct {
    Users AvatarStore
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(users AvatarStore) *UserHandler {
    return &UserHandler{Users: users}
}

type avatarReq struct {
    Email     string `json:"email"`
    AvatarURL string `json:"avatar_url"`
}

// UpdateAvatar sets the avatar URL for the account behind an email.
// The route is admin-only; the role gate runs in middleware before this
// handler is reached.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
    var req avatarReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || strings.TrimSpace(req.AvatarURL) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/avatar_url required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.Users.UpdateAvatarURL(ctx, req.Email, req.AvatarURL); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update avatar failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "avatar updated"})
}
