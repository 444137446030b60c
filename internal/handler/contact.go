package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/nzeleniuk/contactbook/internal/middleware"
    "github.com/nzeleniuk/contactbook/internal/model"
    "github.com/nzeleniuk/contactbook/internal/repository"
)

// ContactHandler serves the contact-book CRUD endpoints.  All routes run
// behind BearerAuth; every repository call is scoped to the resolved
// user, so ownership is enforced twice (here and in the SQL).
type ContactHandler struct {
    Contacts *repository.ContactRepo
}

// NewContactHandler constructs a ContactHandler.
func NewContactHandler(contacts *repository.ContactRepo) *ContactHandler {
    return &ContactHandler{Contacts: contacts}
}

// dateOnly is the wire format for birthdays.
const dateOnly = "2006-01-02"

type contactReq struct {
    Name        string `json:"name"`
    Surname     string `json:"surname"`
    Email       string `json:"email"`
    Phone       string `json:"phone"`
    DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
}

type contactResp struct {
    ID          uint64 `json:"id"`
    Name        string `json:"name"`
    Surname     string `json:"surname"`
    Email       string `json:"email"`
    Phone       string `json:"phone"`
    DateOfBirth string `json:"date_of_birth"`
}

func toContactResp(c *model.Contact) contactResp {
    return contactResp{
        ID:          c.ID,
        Name:        c.Name,
        Surname:     c.Surname,
        Email:       c.Email,
        Phone:       c.Phone,
        DateOfBirth: c.DateOfBirth.Format(dateOnly),
    }
}

func (req *contactReq) validate() (time.Time, string) {
    if req.Name == "" || req.Surname == "" || req.Email == "" || req.Phone == "" {
        return time.Time{}, "name/surname/email/phone required"
    }
    dob, err := time.Parse(dateOnly, req.DateOfBirth)
    if err != nil {
        return time.Time{}, "date_of_birth must be YYYY-MM-DD"
    }
    return dob, ""
}

// Create adds a contact to the current user's book.
func (h *ContactHandler) Create(c echo.Context) error {
    u := middleware.CurrentUser(c)
    var req contactReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    dob, msg := req.validate()
    if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    contact := &model.Contact{
        UserID:      u.ID,
        Name:        req.Name,
        Surname:     req.Surname,
        Email:       req.Email,
        Phone:       req.Phone,
        DateOfBirth: dob,
    }
    if err := h.Contacts.Create(ctx, contact); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create contact failed"})
    }
    return c.JSON(http.StatusCreated, toContactResp(contact))
}

// List returns a page of the current user's contacts.  Supports ?limit=
// and ?offset= query parameters; limit defaults to 50, capped at 200.
func (h *ContactHandler) List(c echo.Context) error {
    u := middleware.CurrentUser(c)
    limit := intQuery(c, "limit", 50)
    if limit < 1 || limit > 200 {
        limit = 50
    }
    offset := intQuery(c, "offset", 0)
    if offset < 0 {
        offset = 0
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    contacts, err := h.Contacts.ListByUser(ctx, u.ID, limit, offset)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list contacts failed"})
    }
    out := make([]contactResp, 0, len(contacts))
    for _, contact := range contacts {
        out = append(out, toContactResp(contact))
    }
    return c.JSON(http.StatusOK, out)
}

// Get returns one contact by id.
func (h *ContactHandler) Get(c echo.Context) error {
    u := middleware.CurrentUser(c)
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    contact, err := h.Contacts.GetByID(ctx, id, u.ID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "contact not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get contact failed"})
    }
    return c.JSON(http.StatusOK, toContactResp(contact))
}

// Update rewrites a contact owned by the current user.
func (h *ContactHandler) Update(c echo.Context) error {
    u := middleware.CurrentUser(c)
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req contactReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    dob, msg := req.validate()
    if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    contact := &model.Contact{
        ID:          id,
        UserID:      u.ID,
        Name:        req.Name,
        Surname:     req.Surname,
        Email:       req.Email,
        Phone:       req.Phone,
        DateOfBirth: dob,
    }
    if err := h.Contacts.Update(ctx, contact); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "contact not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update contact failed"})
    }
    return c.JSON(http.StatusOK, toContactResp(contact))
}

// Delete removes a contact owned by the current user.
func (h *ContactHandler) Delete(c echo.Context) error {
    u := middleware.CurrentUser(c)
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
    defer cancel()

    if err := h.Contacts.Delete(ctx, id, u.ID); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "contact not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete contact failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// intQuery parses an integer query parameter with a default.
func intQuery(c echo.Context, name string, def int) int {
    s := c.QueryParam(name)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        return def
    }
    return n
}
