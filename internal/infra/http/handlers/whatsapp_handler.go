package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/pointhed/waitlist-api/internal/infra/http/middleware"
	"github.com/pointhed/waitlist-api/internal/usecase"
)

type WhatsAppHandler struct {
	InstantDemo *usecase.InstantDemoUseCase
	Notify      *usecase.NotifySubscribersUseCase
	Leads       usecase.LeadRepository
}

func NewWhatsAppHandler(
	instantDemo *usecase.InstantDemoUseCase,
	notify *usecase.NotifySubscribersUseCase,
	leads usecase.LeadRepository,
) *WhatsAppHandler {
	return &WhatsAppHandler{
		InstantDemo: instantDemo,
		Notify:      notify,
		Leads:       leads,
	}
}

func (h *WhatsAppHandler) HandleInstant(w http.ResponseWriter, r *http.Request) {
	var input usecase.InstantDemoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid JSON",
		})
		return
	}

	output, err := h.InstantDemo.Execute(r.Context(), input)
	if err != nil {
		if usecase.IsDomainError(err) {
			middleware.RecordInstantDemo("rejected")
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
		log.Printf("❌ instant demo failed: %v", err)
		middleware.RecordInstantDemo("error")
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Internal server error",
		})
		return
	}

	if output.AlreadyRequested {
		middleware.RecordInstantDemo("duplicate")
	} else {
		middleware.RecordInstantDemo("sent")
	}
	writeJSON(w, http.StatusOK, output)
}

// HandleRemoveLead deletes a lead by phone number. Admin-gated: used to reset
// test numbers between demo runs.
func (h *WhatsAppHandler) HandleRemoveLead(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "phone query parameter is required",
		})
		return
	}

	deleted, err := h.Leads.DeleteByPhone(r.Context(), phone)
	if err != nil {
		log.Printf("❌ failed to delete lead %s: %v", phone, err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Failed to delete lead",
		})
		return
	}

	log.Printf("🗑️ Deleted %d lead(s) for %s", deleted, phone)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": deleted,
	})
}

func (h *WhatsAppHandler) HandleNotify(w http.ResponseWriter, r *http.Request) {
	var input usecase.NotifySubscribersInput
	// An empty body means defaults: stock message, real send.
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid JSON",
		})
		return
	}

	result, err := h.Notify.Execute(r.Context(), input)
	if err != nil {
		log.Printf("❌ notification job failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Notification job failed",
		})
		return
	}

	middleware.RecordNotifications("sent", result.Sent)
	middleware.RecordNotifications("failed", result.Failed)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"dryRun":  input.DryRun,
		"result":  result,
	})
}
