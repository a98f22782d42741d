package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vbrandao/batepapo-server/internal/service/presence"
)

// ParticipantHandlers provides HTTP handlers for presence endpoints.
type ParticipantHandlers struct {
	registry *presence.Registry
	log      *zerolog.Logger
}

// NewParticipantHandlers creates a new participant handlers instance.
func NewParticipantHandlers(registry *presence.Registry, logger *zerolog.Logger) *ParticipantHandlers {
	return &ParticipantHandlers{
		registry: registry,
		log:      logger,
	}
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Name string `json:"name" binding:"required"`
}

// ParticipantResponse represents a participant in API responses.
type ParticipantResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	LastHeartbeat int64  `json:"lastStatus"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Register handles participant registration.
// POST /participants
func (h *ParticipantHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Debug().Err(err).Msg("invalid register request")
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "Insira um nome não vazio!"})
		return
	}

	participant, err := h.registry.Register(c.Request.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, presence.ErrEmptyName):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "Insira um nome não vazio!"})
		case errors.Is(err, presence.ErrNameTaken):
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Esse nome de usuário já está sendo usado"})
		default:
			h.log.Error().Err(err).Str("name", req.Name).Msg("failed to register participant")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	h.log.Info().Str("name", participant.Name).Msg("participant registered")
	c.JSON(http.StatusCreated, ParticipantResponse{
		ID:            participant.ID,
		Name:          participant.Name,
		LastHeartbeat: participant.LastHeartbeat,
	})
}

// List handles listing all registered participants.
// GET /participants
func (h *ParticipantHandlers) List(c *gin.Context) {
	participants, err := h.registry.Participants(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list participants")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]ParticipantResponse, 0, len(participants))
	for _, p := range participants {
		response = append(response, ParticipantResponse{
			ID:            p.ID,
			Name:          p.Name,
			LastHeartbeat: p.LastHeartbeat,
		})
	}

	c.JSON(http.StatusOK, response)
}

// Status handles a liveness heartbeat for the calling participant.
// POST /status
func (h *ParticipantHandlers) Status(c *gin.Context) {
	name := requester(c)

	if err := h.registry.Heartbeat(c.Request.Context(), name); err != nil {
		if errors.Is(err, presence.ErrNotRegistered) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Você não está cadastrado"})
			return
		}
		h.log.Error().Err(err).Str("name", name).Msg("failed to refresh heartbeat")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.Status(http.StatusOK)
}
