package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vbrandao/batepapo-server/internal/service/messages"
	"github.com/vbrandao/batepapo-server/internal/store"
)

// MessageHandlers provides HTTP handlers for message endpoints.
type MessageHandlers struct {
	service *messages.Service
	log     *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(service *messages.Service, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{
		service: service,
		log:     logger,
	}
}

// MessageRequest represents the send/edit message request body. The sender is
// never client-supplied: it always comes from the caller's claimed identity.
type MessageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

// Send handles posting a new message.
// POST /messages
func (h *MessageHandlers) Send(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid message request")
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid request body"})
		return
	}

	from := requester(c)
	msg, err := h.service.Send(c.Request.Context(), from, req.To, req.Text, store.MessageType(req.Type))
	if err != nil {
		h.rejectSendOrEdit(c, err, from)
		return
	}

	h.log.Info().Str("from", msg.From).Str("to", msg.To).Str("type", string(msg.Type)).Msg("message sent")
	c.JSON(http.StatusCreated, toMessageResponse(msg))
}

// List handles reading the message history visible to the caller.
// GET /messages?limit=N
func (h *MessageHandlers) List(c *gin.Context) {
	name := requester(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	visible, err := h.service.List(c.Request.Context(), name, limit)
	if err != nil {
		h.log.Error().Err(err).Str("requester", name).Msg("failed to list messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]MessageResponse, 0, len(visible))
	for _, msg := range visible {
		response = append(response, toMessageResponse(msg))
	}

	c.JSON(http.StatusOK, response)
}

// Edit handles replacing the content of an existing message.
// PUT /messages/:id
func (h *MessageHandlers) Edit(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid edit request")
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid request body"})
		return
	}

	id := c.Param("id")
	name := requester(c)

	err := h.service.Edit(c.Request.Context(), id, name, req.To, req.Text, store.MessageType(req.Type))
	if err != nil {
		h.rejectMutation(c, err, id, name)
		return
	}

	h.log.Info().Str("id", id).Str("from", name).Msg("message edited")
	c.Status(http.StatusOK)
}

// Delete handles removing an existing message.
// DELETE /messages/:id
func (h *MessageHandlers) Delete(c *gin.Context) {
	id := c.Param("id")
	name := requester(c)

	if err := h.service.Delete(c.Request.Context(), id, name); err != nil {
		h.rejectMutation(c, err, id, name)
		return
	}

	h.log.Info().Str("id", id).Str("from", name).Msg("message deleted")
	c.Status(http.StatusOK)
}

// rejectSendOrEdit maps send validation failures to HTTP responses.
func (h *MessageHandlers) rejectSendOrEdit(c *gin.Context, err error, from string) {
	var validationErr *messages.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: validationErr.Error()})
		return
	}

	h.log.Error().Err(err).Str("from", from).Msg("failed to persist message")
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// rejectMutation maps edit/delete failures to HTTP responses.
func (h *MessageHandlers) rejectMutation(c *gin.Context, err error, id, name string) {
	var validationErr *messages.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: validationErr.Error()})
	case errors.Is(err, messages.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "O identificador da mensagem é inválido"})
	case errors.Is(err, messages.ErrNotOwner):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Você não tem autorização para alterar essa mensagem!"})
	default:
		h.log.Error().Err(err).Str("id", id).Str("requester", name).Msg("failed to mutate message")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func toMessageResponse(msg *store.Message) MessageResponse {
	return MessageResponse{
		ID:   msg.ID,
		From: msg.From,
		To:   msg.To,
		Text: msg.Text,
		Type: string(msg.Type),
		Time: msg.Time,
	}
}
