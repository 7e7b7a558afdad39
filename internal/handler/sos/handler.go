package sos

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jwalitptl/ayusutra-api/internal/middleware"
	"github.com/jwalitptl/ayusutra-api/internal/model"
	"github.com/jwalitptl/ayusutra-api/internal/service/alert"
	apperrors "github.com/jwalitptl/ayusutra-api/pkg/errors"
	"github.com/jwalitptl/ayusutra-api/pkg/httputil"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

type Handler struct {
	service  *alert.Service
	upgrader websocket.Upgrader
}

// NewHandler builds the SOS routes. allowedOrigins limits websocket
// upgrades; "*" or an empty list accepts any origin.
func NewHandler(service *alert.Service, allowedOrigins []string) *Handler {
	return &Handler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	sos := r.Group("/sos")
	{
		sos.POST("", h.Tap)
		sos.POST("/keypress", h.KeyPress)
		sos.GET("/ws", h.Stream)
	}
}

// Tap fires an alert immediately.
func (h *Handler) Tap(c *gin.Context) {
	a, err := h.service.Tap(c.Request.Context())
	if err != nil {
		// The alert fired; only its delivery was incomplete.
		_ = c.Error(err)
	}
	httputil.RespondWithStatus(c, http.StatusCreated, gin.H{
		"alert":        a,
		"notification": alert.Activated,
	})
}

type keyPressRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Key       string `json:"key" binding:"required"`
}

type keyPressResponse struct {
	Fired bool         `json:"fired"`
	Alert *model.Alert `json:"alert,omitempty"`
}

func (h *Handler) KeyPress(c *gin.Context) {
	var req keyPressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("session_id and key are required", err))
		return
	}

	a, err := h.service.Press(c.Request.Context(), req.SessionID, req.Key)
	if err != nil && a == nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}
	if err != nil {
		_ = c.Error(err)
	}

	httputil.RespondWithSuccess(c, keyPressResponse{Fired: a != nil, Alert: a})
}

// Stream upgrades to a websocket. Every text frame is one key press; each is
// answered with a keyPressResponse. The connection owns its own detector.
func (h *Handler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		middleware.RequestLogger(c.Request.Context()).Warn().Err(err).Msg("SOS websocket upgrade failed")
		return
	}
	defer conn.Close()

	connID := uuid.New().String()
	ctx := c.Request.Context()
	det, release := h.service.Bind()
	defer release()

	logger := middleware.RequestLogger(ctx).With().Str("connection_id", connID).Logger()
	logger.Info().Msg("SOS key stream opened")
	defer logger.Info().Msg("SOS key stream closed")

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)

	// Only control frames are written here; WriteControl may run alongside
	// WriteJSON.
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("SOS key stream read failed")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		a, err := h.service.Handle(ctx, det, string(data), connID)
		if err != nil {
			logger.Error().Err(err).Msg("SOS alert delivery incomplete")
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(keyPressResponse{Fired: a != nil, Alert: a}); err != nil {
			return
		}
	}
}
