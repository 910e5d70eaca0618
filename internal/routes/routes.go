package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"

	"github.com/sahasrara-wellness/booking-api/internal/audit"
	"github.com/sahasrara-wellness/booking-api/internal/config"
	"github.com/sahasrara-wellness/booking-api/internal/handlers"
	infraRepo "github.com/sahasrara-wellness/booking-api/internal/infra/repository"
	"github.com/sahasrara-wellness/booking-api/internal/middleware"
	"github.com/sahasrara-wellness/booking-api/internal/notifications"
	"github.com/sahasrara-wellness/booking-api/internal/session"
	ucBooking "github.com/sahasrara-wellness/booking-api/internal/usecase/booking"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	sessions := session.NewStore(cfg)
	mailer := notifications.NewMailer(cfg)

	mpCfg, err := mpconfig.New(cfg.MPAccessToken)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure payment gateway")
	}
	preferenceClient := preference.NewClient(mpCfg)
	paymentClient := payment.NewClient(mpCfg)

	// ======================================================
	// USE CASES
	// ======================================================
	getSlotsUC := ucBooking.NewGetSlots(bookingRepo, cfg)
	acquireLockUC := ucBooking.NewAcquireLock(bookingRepo, cfg)
	releaseLockUC := ucBooking.NewReleaseLock(bookingRepo)
	createPendingUC := ucBooking.NewCreatePending(bookingRepo, cfg)
	getBookingUC := ucBooking.NewGetBooking(bookingRepo)
	confirmUC := ucBooking.NewConfirm(bookingRepo, cfg, mailer)

	createManualUC := ucBooking.NewCreateManual(bookingRepo, cfg, auditDispatcher)
	completeUC := ucBooking.NewCompleteBooking(bookingRepo, auditDispatcher)
	cancelUC := ucBooking.NewCancelBooking(bookingRepo, auditDispatcher)
	listByDateUC := ucBooking.NewListBookingsByDate(bookingRepo)
	listLogsUC := ucBooking.NewListStatusLogs(bookingRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	publicHandler := handlers.NewPublicHandler(db)

	bookingHandler := handlers.NewBookingHandler(
		cfg,
		sessions,
		getSlotsUC,
		acquireLockUC,
		releaseLockUC,
		createPendingUC,
		getBookingUC,
	)

	paymentHandler := handlers.NewPaymentHandler(
		cfg,
		bookingRepo,
		preferenceClient,
		paymentClient,
		getBookingUC,
		confirmUC,
	)

	adminHandler := handlers.NewAdminBookingHandler(
		cfg,
		createManualUC,
		completeUC,
		cancelUC,
		listByDateUC,
		listLogsUC,
	)

	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// ROUTES
	// ======================================================
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.GET("/branches", publicHandler.ListBranches)
		api.GET("/branches/:branchId/services", publicHandler.ListServices)
		api.GET("/branches/:branchId/workers", publicHandler.ListWorkers)

		api.GET("/slots", bookingHandler.GetSlots)
		api.POST("/locks", bookingHandler.AcquireLock)
		api.DELETE("/locks/:id", bookingHandler.ReleaseLock)

		api.POST("/bookings", bookingHandler.Create)
		api.GET("/bookings/mine", bookingHandler.ListMine)
		api.GET("/bookings/:id", bookingHandler.Get)
		api.POST("/bookings/:id/pay", paymentHandler.Initiate)

		api.GET("/payments/callback", paymentHandler.Callback)
		api.POST("/payments/webhook", paymentHandler.Webhook)

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// ADMIN
		// ------------------------------
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(cfg))
		{
			admin.POST("/bookings", adminHandler.CreateManual)
			admin.GET("/bookings", adminHandler.ListByDate)
			admin.PATCH("/bookings/:id/complete", adminHandler.Complete)
			admin.PATCH("/bookings/:id/cancel", adminHandler.Cancel)
			admin.GET("/bookings/:id/status-logs", adminHandler.ListStatusLogs)

			admin.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
