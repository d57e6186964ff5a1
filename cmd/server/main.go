// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/unclebandit/mailpanel-backend/internal/controller"
	"github.com/unclebandit/mailpanel-backend/internal/delivery"
	"github.com/unclebandit/mailpanel-backend/internal/service"
	"github.com/unclebandit/mailpanel-backend/internal/session"
	"github.com/unclebandit/mailpanel-backend/internal/store"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	baseURL := os.Getenv("DELIVERY_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8081"
	}

	deliveryClient := delivery.NewHTTPClient(baseURL, session.FromEnv())
	batchStore := store.NewBatchStore()

	dispatchService := &service.DispatchService{
		Delivery: deliveryClient,
		Store:    batchStore,
	}
	mailService := &service.MailService{
		Delivery: deliveryClient,
	}

	mailController := &controller.MailController{
		DispatchService: dispatchService,
		MailService:     mailService,
		Delivery:        deliveryClient,
	}

	r := chi.NewRouter()

	// Bulk campaign routes
	r.Post("/api/mail/upload-csv", mailController.UploadCSV)
	r.Get("/api/mail/bulk/{batchID}", mailController.GetBatch)
	r.Put("/api/mail/bulk/{batchID}/selection", mailController.UpdateSelection)
	r.Post("/api/mail/bulk/{batchID}/select-all", mailController.SelectAll)
	r.Post("/api/mail/bulk/{batchID}/clear-selection", mailController.ClearSelection)
	r.Post("/api/mail/bulk/{batchID}/send", mailController.SendBulk)
	r.Delete("/api/mail/bulk/{batchID}", mailController.DeleteBatch)

	// Single send + panel extras
	r.Post("/api/mail/send", mailController.SendMail)
	r.Get("/api/email-contacts/search", mailController.SearchContacts)
	r.Post("/api/mail/count", mailController.CountMail)
	r.Post("/api/mail/export", mailController.ExportMail)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("🚀 Mail panel server running on :" + port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}
