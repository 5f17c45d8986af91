package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/messagely/messaging-api/internal/api/metrics"
	"github.com/messagely/messaging-api/internal/core/domain"
	"github.com/messagely/messaging-api/internal/core/ports"
)

// LoginRecorder is the interface the handlers use to schedule the
// best-effort last-login update after a successful register or login.
type LoginRecorder interface {
	Record(username string)
}

// AuthHandler handles registration and login.
type AuthHandler struct {
	accounts ports.AccountService
	recorder LoginRecorder
}

func NewAuthHandler(accounts ports.AccountService, recorder LoginRecorder) *AuthHandler {
	return &AuthHandler{accounts: accounts, recorder: recorder}
}

type registerRequest struct {
	Username  string `json:"username"   validate:"required"`
	Password  string `json:"password"   validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"  validate:"required"`
	Phone     string `json:"phone"      validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string          `json:"token"`
	User  *domain.Account `json:"user,omitempty"`
}

// Register creates an account, issues a token, and schedules the last-login
// update off the response path.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.accounts.Register(c.Request().Context(), req.Username, req.Password, req.FirstName, req.LastName, req.Phone)
	if err != nil {
		if err == domain.ErrDuplicateIdentity {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		} else {
			metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		}
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues("success").Inc()

	token, err := h.accounts.IssueToken(account.Username)
	if err != nil {
		return err
	}

	h.recorder.Record(account.Username)

	return c.JSON(http.StatusCreated, authResponse{Token: token, User: account})
}

// Login authenticates a credential pair and returns a signed token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.accounts.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if err == domain.ErrInvalidCredentials {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		} else {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
		}
		return err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	token, err := h.accounts.IssueToken(account.Username)
	if err != nil {
		return err
	}

	h.recorder.Record(account.Username)

	return c.JSON(http.StatusOK, authResponse{Token: token, User: account})
}
