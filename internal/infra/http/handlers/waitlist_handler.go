package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/pointhed/waitlist-api/internal/infra/http/middleware"
	"github.com/pointhed/waitlist-api/internal/usecase"
)

type WaitlistHandler struct {
	JoinWaitlist *usecase.JoinWaitlistUseCase
	Mail         usecase.EmailService
	rateLimiter  *RateLimiter
}

func NewWaitlistHandler(joinWaitlist *usecase.JoinWaitlistUseCase, mailService usecase.EmailService) *WaitlistHandler {
	return &WaitlistHandler{
		JoinWaitlist: joinWaitlist,
		Mail:         mailService,
		rateLimiter:  NewRateLimiter(10, time.Minute), // 10 req/min per IP
	}
}

func (h *WaitlistHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)
	if !h.rateLimiter.Allow(clientIP) {
		middleware.RecordSignup("rate_limited")
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"success": false,
			"error":   "Too many requests. Please try again later.",
		})
		return
	}

	var input usecase.JoinWaitlistInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Invalid JSON",
		})
		return
	}

	output, err := h.JoinWaitlist.Execute(r.Context(), input)
	if err != nil {
		if usecase.IsDomainError(err) {
			middleware.RecordSignup("rejected")
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
		log.Printf("❌ waitlist signup failed: %v", err)
		middleware.RecordSignup("error")
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Failed to join waitlist. Please try again.",
		})
		return
	}

	if output.AlreadyExists {
		middleware.RecordSignup("duplicate")
		writeJSON(w, http.StatusOK, output)
		return
	}

	middleware.RecordSignup("created")
	writeJSON(w, http.StatusCreated, output)
}

// HandleTestEmail sends a confirmation email to an arbitrary address so the
// SMTP configuration can be verified without a real signup. Admin-gated.
func (h *WaitlistHandler) HandleTestEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "email is required",
		})
		return
	}

	if h.Mail == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"success": false,
			"error":   "Email service not configured",
		})
		return
	}

	if err := h.Mail.SendWaitlistConfirmation(req.Email, 0); err != nil {
		log.Printf("❌ test email to %s failed: %v", req.Email, err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	log.Printf("✅ Test email sent to %s", req.Email)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Test email sent to " + req.Email,
	})
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
	}

	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := time.Now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, v := range rl.visitors {
			if now.Sub(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
