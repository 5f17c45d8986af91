package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/messagely/messaging-api/internal/api/metrics"
	"github.com/messagely/messaging-api/internal/core/domain"
	"github.com/messagely/messaging-api/internal/core/ports"
)

// MessageHandler handles message creation, retrieval, and read receipts. The
// sender is always the authenticated user.
type MessageHandler struct {
	messages ports.MessageService
}

func NewMessageHandler(messages ports.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

type sendMessageRequest struct {
	To   string `json:"to_username" validate:"required"`
	Body string `json:"body"        validate:"required"`
}

type messageResponse struct {
	Message *domain.Message `json:"message"`
}

func messageID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid message id")
	}
	return id, nil
}

// Send handles POST /messages. An optional Idempotency-Key header makes the
// call safe to retry: a replay returns the originally created message.
//
// @Summary      Send a directed message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string              false  "Idempotency key"
// @Param        body             body      sendMessageRequest  true   "Message to send"
// @Success      201              {object}  messageResponse
// @Failure      400              {object}  map[string]string
// @Failure      401              {object}  map[string]string
// @Failure      404              {object}  map[string]string
// @Router       /messages [post]
func (h *MessageHandler) Send(c echo.Context) error {
	from, err := ctxUsername(c)
	if err != nil {
		return err
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.messages.Send(c.Request().Context(), ports.SendMessageInput{
		From:           from,
		To:             req.To,
		Body:           req.Body,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}

	if result.AlreadyExisted {
		metrics.MessagesSentTotal.WithLabelValues("replayed").Inc()
		return c.JSON(http.StatusOK, messageResponse{Message: result.Message})
	}
	metrics.MessagesSentTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, messageResponse{Message: result.Message})
}

// Get handles GET /messages/:id. Only the sender or the recipient may view a
// message.
//
// @Summary      Get a message by id
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      int  true  "Message id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /messages/{id} [get]
func (h *MessageHandler) Get(c echo.Context) error {
	requester, err := ctxUsername(c)
	if err != nil {
		return err
	}
	id, err := messageID(c)
	if err != nil {
		return err
	}

	message, err := h.messages.Get(c.Request().Context(), id, requester)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: message})
}

// MarkRead handles POST /messages/:id/read. Only the recipient may mark a
// message read; re-marking is a no-op that returns the unchanged message.
//
// @Summary      Mark a message as read
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      int  true  "Message id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /messages/{id}/read [post]
func (h *MessageHandler) MarkRead(c echo.Context) error {
	reader, err := ctxUsername(c)
	if err != nil {
		return err
	}
	id, err := messageID(c)
	if err != nil {
		return err
	}

	message, err := h.messages.MarkRead(c.Request().Context(), id, reader)
	if err != nil {
		return err
	}

	metrics.MessagesReadTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: message})
}
