package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rabbitmq/amqp091-go"

	"github.com/pointhed/waitlist-api/internal/infra/database"
	"github.com/pointhed/waitlist-api/internal/infra/http/handlers"
	appmiddleware "github.com/pointhed/waitlist-api/internal/infra/http/middleware"
	"github.com/pointhed/waitlist-api/internal/infra/integration/whatsapp"
	"github.com/pointhed/waitlist-api/internal/infra/mail"
	"github.com/pointhed/waitlist-api/internal/infra/queue"
	"github.com/pointhed/waitlist-api/internal/usecase"
)

func main() {
	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("❌ database connection failed: %v", err)
	}
	defer db.Close()

	// RabbitMQ is optional: the confirmation email falls back to a direct
	// goroutine send when no broker is reachable.
	var rabbitConn *amqp091.Connection
	var producer usecase.QueueProducerInterface

	var mailService usecase.EmailService
	var workerMailer queue.ConfirmationMailer
	if sender := mail.NewSenderFromEnv(); sender != nil {
		mailService = sender
		workerMailer = sender
	} else {
		log.Println("⚠️ Email credentials missing, confirmation emails disabled")
	}

	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		rabbitMQ, err := queue.NewRabbitMQ(url)
		if err != nil {
			log.Printf("⚠️ RabbitMQ unavailable, confirmation emails go direct: %v", err)
		} else {
			defer rabbitMQ.Conn.Close()
			defer rabbitMQ.Ch.Close()
			rabbitConn = rabbitMQ.Conn
			producer = queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

			worker := queue.NewWorker(rabbitMQ.Ch, workerMailer)
			go worker.Start(queue.QueueName)
		}
	}

	// 1. Repositories
	leadRepo := database.NewLeadRepository(db)
	waitlistRepo := database.NewWaitlistRepository(db)

	// 2. Gateways
	whatsAppClient := whatsapp.NewClient()
	if !whatsAppClient.Configured() {
		log.Println("⚠️ WhatsApp credentials missing, outbound messages disabled")
	}

	// 3. UseCases
	instantDemoUC := usecase.NewInstantDemoUseCase(leadRepo, whatsAppClient)
	joinWaitlistUC := usecase.NewJoinWaitlistUseCase(waitlistRepo, producer, mailService)
	notifyUC := usecase.NewNotifySubscribersUseCase(leadRepo, whatsAppClient)
	router := usecase.NewWebhookRouter(leadRepo, whatsAppClient)

	// 4. Handlers
	webhookHandler := handlers.NewWebhookHandler(router)
	whatsAppHandler := handlers.NewWhatsAppHandler(instantDemoUC, notifyUC, leadRepo)
	waitlistHandler := handlers.NewWaitlistHandler(joinWaitlistUC, mailService)
	healthHandler := handlers.NewHealthHandler(db, rabbitConn, whatsAppClient)

	// 5. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{os.Getenv("FRONTEND_URL"), "http://localhost:5173"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Admin-Token"},
	}))
	r.Use(appmiddleware.Metrics)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"service":"waitlist-api","status":"ok"}`))
	})
	r.Get("/health", healthHandler.Handle)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/webhook", webhookHandler.HandleVerify)
	r.Post("/webhook", webhookHandler.HandleEvent)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/waitlist", waitlistHandler.HandleJoin)
		r.Post("/whatsapp/instant", whatsAppHandler.HandleInstant)

		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.AdminOnly)
			r.Delete("/whatsapp/leads", whatsAppHandler.HandleRemoveLead)
			r.Post("/admin/notify", whatsAppHandler.HandleNotify)
			r.Post("/admin/test-email", waitlistHandler.HandleTestEmail)
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🔥 Waitlist API running on port %s", port)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("❌ server stopped: %v", err)
	}
}
