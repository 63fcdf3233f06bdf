package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/pointhed/waitlist-api/internal/infra/http/middleware"
	"github.com/pointhed/waitlist-api/internal/infra/integration/whatsapp"
	"github.com/pointhed/waitlist-api/internal/usecase"
)

type WebhookHandler struct {
	Router *usecase.WebhookRouter
}

func NewWebhookHandler(router *usecase.WebhookRouter) *WebhookHandler {
	return &WebhookHandler{Router: router}
}

// HandleVerify answers Meta's subscription handshake: echo the challenge when
// the verify token matches, 403 otherwise.
func (h *WebhookHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	verifyToken := os.Getenv("WHATSAPP_VERIFY_TOKEN")

	if mode == "subscribe" && verifyToken != "" && token == verifyToken {
		log.Println("✅ Webhook verified")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	log.Println("❌ Webhook verification failed")
	w.WriteHeader(http.StatusForbidden)
}

// HandleEvent acks the delivery immediately and processes it in the
// background. Meta retries deliveries that are not answered fast, so no
// processing happens on the request path.
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var payload whatsapp.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Printf("⚠️ failed to decode webhook payload: %v", err)
		middleware.RecordWebhookEvent("bad_payload")
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
		return
	}

	middleware.RecordWebhookEvent("received")
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("❌ panic while processing webhook: %v", rec)
			}
		}()
		h.Router.Process(context.Background(), payload)
	}()
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
