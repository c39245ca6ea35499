package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/nidhogg/wabot/internal/gateway"
	"go.uber.org/zap"
)

// maxWebhookBody bounds how much of a delivery we read.
const maxWebhookBody = 1 << 20

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	whatsapp *gateway.WhatsAppAdapter
	restGW   *gateway.RESTAdapter
	gw       *gateway.Gateway
	botName  string
	logger   *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(
	whatsapp *gateway.WhatsAppAdapter,
	restGW *gateway.RESTAdapter,
	gw *gateway.Gateway,
	botName string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		whatsapp: whatsapp,
		restGW:   restGW,
		gw:       gw,
		botName:  botName,
		logger:   logger,
	}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	// The platform calls one URL for both the handshake and deliveries.
	r.HandleFunc("/webhook", h.webhook)

	r.Route("/api", func(r chi.Router) {
		r.HandleFunc("/webhook", h.webhook)
		r.Get("/health", h.healthCheck)

		if h.restGW != nil {
			r.Mount("/gateway/rest", h.restGW.Routes())
		}
		r.Get("/gateway/status", h.gatewayStatus)
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "bot": h.botName})
}

func (h *Handler) gatewayStatus(w http.ResponseWriter, r *http.Request) {
	if h.gw == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "gateway not initialized"})
		return
	}
	writeJSON(w, http.StatusOK, h.gw.StatusAll())
}

// webhook serves the subscription handshake (GET) and message deliveries
// (POST). Anything that panics past the command layer becomes a 500.
func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("webhook panic",
				zap.Any("panic", rec),
				zap.String("request_id", middleware.GetReqID(r.Context())))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
	}()

	switch r.Method {
	case http.MethodGet:
		h.verifyWebhook(w, r)
	case http.MethodPost:
		h.receiveWebhook(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (h *Handler) verifyWebhook(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := firstParam(q.Get("hub.mode"), q.Get("mode"))
	token := firstParam(q.Get("hub.verify_token"), q.Get("verify_token"))
	challenge := firstParam(q.Get("hub.challenge"), q.Get("challenge"))

	resp, ok := h.whatsapp.Verify(mode, token, challenge)
	if !ok {
		h.logger.Warn("webhook verification rejected", zap.String("mode", mode))
		w.WriteHeader(http.StatusForbidden)
		return
	}
	h.logger.Info("webhook verified")
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, resp)
}

func (h *Handler) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	deliveryID := uuid.New().String()
	logger := h.logger.With(zap.String("delivery", deliveryID))

	// Replies must finish even if the platform hangs up early.
	ctx := context.WithoutCancel(r.Context())
	n, err := h.whatsapp.Deliver(ctx, body)
	if err != nil {
		if errors.Is(err, gateway.ErrMalformedPayload) {
			logger.Warn("rejected webhook payload", zap.Error(err))
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		logger.Error("webhook processing failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	logger.Info("webhook processed", zap.Int("messages", n))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func firstParam(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
