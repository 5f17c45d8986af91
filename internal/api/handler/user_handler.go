package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/messagely/messaging-api/internal/core/domain"
	"github.com/messagely/messaging-api/internal/core/ports"
)

// UserHandler serves account profiles and the per-user message directory.
type UserHandler struct {
	accounts ports.AccountService
	messages ports.MessageService
}

func NewUserHandler(accounts ports.AccountService, messages ports.MessageService) *UserHandler {
	return &UserHandler{accounts: accounts, messages: messages}
}

type userListResponse struct {
	Users []domain.Profile `json:"users"`
}

type userResponse struct {
	User *domain.Account `json:"user"`
}

type sentMessagesResponse struct {
	Messages []domain.OutgoingMessage `json:"messages"`
}

type receivedMessagesResponse struct {
	Messages []domain.IncomingMessage `json:"messages"`
}

// List handles GET /users: basic info on all users.
//
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userListResponse
// @Failure      401  {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	profiles, err := h.accounts.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userListResponse{Users: profiles})
}

// Get handles GET /users/:username: full non-secret detail on one user.
//
// @Summary      Get a user by username
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  userResponse
// @Failure      401       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /users/{username} [get]
func (h *UserHandler) Get(c echo.Context) error {
	account, err := h.accounts.Get(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: account})
}

// Sent handles GET /users/:username/from: messages sent by the user, each
// enriched with the recipient's current profile.
//
// @Summary      List messages sent by a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  sentMessagesResponse
// @Failure      401       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Router       /users/{username}/from [get]
func (h *UserHandler) Sent(c echo.Context) error {
	messages, err := h.messages.SentBy(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sentMessagesResponse{Messages: messages})
}

// Received handles GET /users/:username/to: messages received by the user,
// each enriched with the sender's current profile.
//
// @Summary      List messages received by a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  receivedMessagesResponse
// @Failure      401       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Router       /users/{username}/to [get]
func (h *UserHandler) Received(c echo.Context) error {
	messages, err := h.messages.ReceivedBy(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, receivedMessagesResponse{Messages: messages})
}
