package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/givehopebz/givehope-api/internal/config"
	"github.com/givehopebz/givehope-api/internal/database"
	"github.com/givehopebz/givehope-api/internal/handlers"
	"github.com/givehopebz/givehope-api/internal/jobs"
	"github.com/givehopebz/givehope-api/internal/repository"
	cronjobs "github.com/givehopebz/givehope-api/internal/scheduler"
	"github.com/givehopebz/givehope-api/internal/services"
	"github.com/givehopebz/givehope-api/pkg/authz"
	"github.com/givehopebz/givehope-api/pkg/email"
	"github.com/givehopebz/givehope-api/pkg/logger"
	"github.com/givehopebz/givehope-api/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	policy := authz.NewPolicy(cfg.AdminEmails)

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	donationRepo := repository.NewDonationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	notificationService := services.NewNotificationService(notificationRepo)
	notificationService.SendEmail = email.SendEmail
	moderationService := services.NewModerationService(reviewRepo, campaignRepo, notificationService, policy)
	donationService := services.NewDonationService(donationRepo, campaignRepo, policy)
	statsService := services.NewStatsService(campaignRepo)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	campaignHandler := handlers.NewCampaignHandler(moderationService, statsService, userService)
	reviewHandler := handlers.NewReviewHandler(moderationService, userService)
	donationHandler := handlers.NewDonationHandler(donationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")
	router.HandleFunc("/campaigns", campaignHandler.ListCampaignsHandler).Methods("GET")
	router.HandleFunc("/campaigns/{id}", campaignHandler.GetCampaignHandler).Methods("GET")
	router.HandleFunc("/campaigns/{id}/donations", donationHandler.ListCampaignDonationsHandler).Methods("GET")
	router.HandleFunc("/donations", donationHandler.CreateDonationHandler).Methods("POST")
	router.HandleFunc("/stats", campaignHandler.SiteStatsHandler).Methods("GET")

	lastSeen := middleware.UpdateLastSeenMiddleware(func(r *http.Request, userID primitive.ObjectID) {
		_ = userService.UpdateLastSeen(r.Context(), userID)
	})

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret), lastSeen)
	protectedUserRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/me/eligibility", userHandler.EligibilityHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.UpdateUserHandler).Methods("PATCH")

	// Campaign submission and creator-scoped routes
	protectedCampaignRoutes := router.PathPrefix("/campaigns").Subrouter()
	protectedCampaignRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret), lastSeen)
	protectedCampaignRoutes.HandleFunc("/submit", reviewHandler.SubmitHandler).Methods("POST")
	protectedCampaignRoutes.HandleFunc("/reviews/mine", reviewHandler.MyReviewsHandler).Methods("GET")
	protectedCampaignRoutes.HandleFunc("/reviews/{id}", reviewHandler.DeleteReviewHandler).Methods("DELETE")
	protectedCampaignRoutes.HandleFunc("/{id}", campaignHandler.DeleteCampaignHandler).Methods("DELETE")

	// Notification routes
	protectedNotificationRoutes := router.PathPrefix("/notifications").Subrouter()
	protectedNotificationRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedNotificationRoutes.HandleFunc("", notificationHandler.ListHandler).Methods("GET")
	protectedNotificationRoutes.HandleFunc("/{id}/read", notificationHandler.MarkReadHandler).Methods("POST")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireAdmin(policy))
	adminRoutes.HandleFunc("/reviews", reviewHandler.AdminListReviewsHandler).Methods("GET")
	adminRoutes.HandleFunc("/reviews/{id}/approve", reviewHandler.AdminApproveHandler).Methods("POST")
	adminRoutes.HandleFunc("/reviews/{id}/reject", reviewHandler.AdminRejectHandler).Methods("POST")
	adminRoutes.HandleFunc("/campaigns", campaignHandler.AdminCreateCampaignHandler).Methods("POST")
	adminRoutes.HandleFunc("/campaigns/{id}", campaignHandler.AdminEditTextHandler).Methods("PATCH")
	adminRoutes.HandleFunc("/campaigns/{id}/hold", campaignHandler.AdminHoldHandler).Methods("POST")
	adminRoutes.HandleFunc("/campaigns/{id}/audit", donationHandler.AdminAuditHandler).Methods("GET")
	adminRoutes.HandleFunc("/campaigns/{id}/reconcile", donationHandler.AdminReconcileHandler).Methods("POST")
	adminRoutes.HandleFunc("/donations", donationHandler.AdminListDonationsHandler).Methods("GET")
	adminRoutes.HandleFunc("/donations/{id}/approve", donationHandler.AdminApproveDonationHandler).Methods("POST")
	adminRoutes.HandleFunc("/donations/{id}/fail", donationHandler.AdminFailDonationHandler).Methods("POST")
	adminRoutes.HandleFunc("/users", userHandler.AdminGetAllUsersHandler).Methods("GET")
	adminRoutes.HandleFunc("/users/{id}/verification", userHandler.AdminSetVerificationHandler).Methods("PATCH")
	adminRoutes.HandleFunc("/users/{id}/status", userHandler.AdminSetStatusHandler).Methods("PATCH")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Background maintenance: nightly reconciliation, notification cleanup
	reconciler := jobs.NewReconciler(donationService)
	cronjobs.StartCronJobs(reconciler, notificationService)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // adjust to frontend origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
