package handler

import (
    "context"
    "errors"
    "log"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/nzeleniuk/contactbook/internal/auth"
    "github.com/nzeleniuk/contactbook/internal/middleware"
    "github.com/nzeleniuk/contactbook/internal/model"
    "github.com/nzeleniuk/contactbook/internal/queue"
)

// dbTimeout bounds every storage call made from a handler.
const dbTimeout = 5 * time.Second

// AuthHandler bundles dependencies for auth endpoints.  All token and
// credential logic lives in the auth core; this layer only binds
// requests, maps error kinds to status codes and shapes responses.
type AuthHandler struct {
    Auth *auth.Service
}

// NewAuthHandler constructs an AuthHandler around the auth core.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
    return &AuthHandler{Auth: svc}
}

// ----- DTOs -----

type registerReq struct {
    Username string `json:"username"`
    Email    string `json:"email"`
    Password string `json:"password"`
}
type loginReq struct {
    Username string `json:"username"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}
type resetRequestReq struct {
    Email string `json:"email"`
}
type resetConfirmReq struct {
    Token    string `json:"token"`
    Password string `json:"password"`
}

// userResp is the public shape of a user.  The password hash has no
// field here and can never leak through this layer.
type userResp struct {
    ID        uint64 `json:"id"`
    Username  string `json:"username"`
    Email     string `json:"email"`
    Avatar    string `json:"avatar,omitempty"`
    Confirmed bool   `json:"confirmed"`
    Role      string `json:"role"`
}

type tokenResp struct {
    AccessToken      string    `json:"access_token"`
    TokenType        string    `json:"token_type"`
    AccessExpiresAt  time.Time `json:"access_expires_at"`
    RefreshToken     string    `json:"refresh_token"`
    RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

func toUserResp(u *model.User) userResp {
    return userResp{
        ID:        u.ID,
        Username:  u.Username,
        Email:     u.Email,
        Avatar:    u.Avatar,
        Confirmed: u.Confirmed,
        Role:      string(u.Role),
    }
}

func toTokenResp(p *auth.TokenPair) tokenResp {
    return tokenResp{
        AccessToken:      p.AccessToken,
        TokenType:        "bearer",
        AccessExpiresAt:  p.AccessExpiresAt,
        RefreshToken:     p.RefreshToken,
        RefreshExpiresAt: p.RefreshExpiresAt,
    }
}

// bearerToken extracts the raw access token from the Authorization
// header, or "" when the header is absent or malformed.
func bearerToken(c echo.Context) string {
    h := c.Request().Header.Get("Authorization")
    if !strings.HasPrefix(h, "Bearer ") {
        return ""
    }
    return strings.TrimPrefix(h, "Bearer ")
}

// Register creates an unconfirmed account and queues the verification
// mail.  The response is the created user, never tokens; the client
// logs in after confirming.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Username = strings.TrimSpace(req.Username)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Username == "" || req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email/password required"})
    }
    if len(req.Password) < 6 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "password too short"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Auth.Register(ctx, req.Username, req.Email, req.Password)
    if err != nil {
        if errors.Is(err, auth.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "username or email already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
    }

    // Queue the verification mail.  A broker outage must not undo a
    // successful registration, so the error is logged and dropped; the
    // confirm endpoint can reissue later.
    if token, err := h.Auth.IssueEmailVerificationToken(u.Email); err == nil {
        ev := queue.MailEvent{
            Kind:      queue.MailKindVerification,
            Username:  u.Username,
            Email:     u.Email,
            Token:     token,
            BaseURL:   c.Scheme() + "://" + c.Request().Host + "/v1/",
            CreatedAt: time.Now().UTC().Format(time.RFC3339),
        }
        if err := queue.PublishMail(c.Request().Context(), ev); err != nil {
            log.Printf("register: queue verification mail for %s failed: %v", u.Email, err)
        }
    }

    return c.JSON(http.StatusCreated, toUserResp(u))
}

// Login verifies credentials and returns a fresh access/refresh pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Username == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    u, err := h.Auth.Authenticate(ctx, req.Username, req.Password)
    if err != nil {
        switch {
        case errors.Is(err, auth.ErrInvalidCredentials):
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        case errors.Is(err, auth.ErrEmailNotConfirmed):
            return c.JSON(http.StatusForbidden, echo.Map{"error": "email not confirmed"})
        case errors.Is(err, auth.ErrTooManyAttempts):
            return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many login attempts"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
    }

    pair, err := h.Auth.IssuePair(ctx, u, c.RealIP(), c.Request().UserAgent())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }
    return c.JSON(http.StatusOK, toTokenResp(pair))
}

// Refresh rotates a refresh token: the presented secret is spent and a
// brand-new pair is returned.  Replaying the old secret afterwards is
// rejected, even when the replay races this request.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    _, pair, err := h.Auth.RotateRefreshToken(ctx,
        strings.TrimSpace(req.RefreshToken), c.RealIP(), c.Request().UserAgent())
    if err != nil {
        switch {
        case errors.Is(err, auth.ErrInvalidToken),
            errors.Is(err, auth.ErrTokenExpiredOrRevoked),
            errors.Is(err, auth.ErrUserNotFound):
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
    }
    return c.JSON(http.StatusOK, toTokenResp(pair))
}

// Logout revokes the presented bearer access token (denylist) and the
// refresh token from the body (storage).  Revoking a stale or unknown
// refresh token is a no-op; the denylist write, however, must land, as
// a logout the client cannot trust is treated as a failure.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    _ = c.Bind(&req) // missing body just means no refresh token to revoke

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if access := bearerToken(c); access != "" {
        if err := h.Auth.RevokeAccessToken(ctx, access); err != nil {
            if errors.Is(err, auth.ErrInvalidToken) {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "logout failed"})
        }
    }
    if raw := strings.TrimSpace(req.RefreshToken); raw != "" {
        if err := h.Auth.RevokeRefreshToken(ctx, raw); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
        }
    }
    return c.NoContent(http.StatusNoContent)
}

// LogoutAll revokes every refresh token of the current user and
// denylists the presenting access token.  Runs behind BearerAuth.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
    u := middleware.CurrentUser(c)
    if u == nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.Auth.RevokeAllSessions(ctx, u.ID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
    }
    if access := bearerToken(c); access != "" {
        if err := h.Auth.RevokeAccessToken(ctx, access); err != nil {
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "logout failed"})
        }
    }
    return c.NoContent(http.StatusNoContent)
}

// ConfirmEmail verifies the token from the mailed link and flips the
// account's confirmed flag.
func (h *AuthHandler) ConfirmEmail(c echo.Context) error {
    token := c.Param("token")

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.Auth.ConfirmEmail(ctx, token); err != nil {
        switch {
        case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenExpired):
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
        case errors.Is(err, auth.ErrUserNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirmation failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "email confirmed"})
}

// RequestPasswordReset mints a reset token for the account behind the
// given email and queues the reset mail.
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
    var req resetRequestReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
    }
    email := strings.ToLower(strings.TrimSpace(req.Email))

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    token, err := h.Auth.IssuePasswordResetToken(ctx, email)
    if err != nil {
        if errors.Is(err, auth.ErrUserNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user with this email not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset request failed"})
    }

    ev := queue.MailEvent{
        Kind:      queue.MailKindPasswordReset,
        Email:     email,
        Token:     token,
        BaseURL:   c.Scheme() + "://" + c.Request().Host + "/v1/",
        CreatedAt: time.Now().UTC().Format(time.RFC3339),
    }
    if err := queue.PublishMail(c.Request().Context(), ev); err != nil {
        log.Printf("password-reset: queue mail for %s failed: %v", email, err)
    }
    return c.JSON(http.StatusAccepted, echo.Map{"message": "reset email queued"})
}

// ConfirmPasswordReset verifies a reset token and sets the new password.
func (h *AuthHandler) ConfirmPasswordReset(c echo.Context) error {
    var req resetConfirmReq
    if err := c.Bind(&req); err != nil || req.Token == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "token/password required"})
    }
    if len(req.Password) < 6 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "password too short"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.Auth.ResetPassword(ctx, req.Token, req.Password); err != nil {
        switch {
        case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenExpired):
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
        case errors.Is(err, auth.ErrUserNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password reset failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

// Me returns the authenticated user.  Runs behind BearerAuth.
func (h *AuthHandler) Me(c echo.Context) error {
    u := middleware.CurrentUser(c)
    if u == nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    return c.JSON(http.StatusOK, toUserResp(u))
}
