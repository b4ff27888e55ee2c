package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"

	"github.com/freight-platform/booking-service/internal/api/dto"
	"github.com/freight-platform/booking-service/internal/application"
	"github.com/freight-platform/booking-service/internal/domain"
	kafkainfra "github.com/freight-platform/booking-service/internal/infrastructure/kafka"
	mongoRepo "github.com/freight-platform/booking-service/internal/infrastructure/mongodb"
	"github.com/freight-platform/booking-service/internal/infrastructure/projections"
	apperrors "github.com/freight-platform/booking-service/pkg/errors"
	"github.com/freight-platform/booking-service/pkg/events"
	"github.com/freight-platform/booking-service/pkg/kafka"
	"github.com/freight-platform/booking-service/pkg/logging"
	"github.com/freight-platform/booking-service/pkg/metrics"
	"github.com/freight-platform/booking-service/pkg/middleware"
	"github.com/freight-platform/booking-service/pkg/mongodb"
	"github.com/freight-platform/booking-service/pkg/tracing"
)

const serviceName = "booking-service"

func main() {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting booking-service API")

	config := loadConfig()
	ctx := context.Background()

	// OpenTelemetry tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Prometheus metrics
	m := metrics.New(metrics.DefaultConfig(serviceName))

	// MongoDB
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Kafka producer behind a circuit breaker
	producer := kafka.NewProducer(config.Kafka)
	breakerProducer := kafka.NewBreakerProducer(producer, func(name string, from, to gobreaker.State) {
		logger.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		m.SetCircuitBreakerState(name, int(to))
		if to == gobreaker.StateOpen {
			m.RecordCircuitBreakerTrip(name)
		}
	})
	defer breakerProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	eventFactory := events.NewFactory("/" + serviceName)
	eventPublisher := kafkainfra.NewEventPublisher(breakerProducer, eventFactory, logger, m)

	repo := mongoRepo.NewBookingRepository(mongoClient.Database())
	dashboardRepo := projections.NewDashboardRepository(mongoClient.Database())

	bookingService := application.NewBookingService(repo, eventPublisher, logger, m)

	// Gin router with the platform middleware chain
	router := gin.New()
	middleware.Setup(router, &middleware.Config{
		Logger:      logger.Logger,
		ServiceName: serviceName,
		EnableCORS:  true,
	})
	router.Use(middleware.TenantContext(&middleware.TenantConfig{
		Required:        getEnv("TENANT_REQUIRED", "false") == "true",
		DefaultTenantID: getEnv("DEFAULT_TENANT_ID", "default"),
	}))
	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.SimpleTracingMiddleware(serviceName))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api/v1/bookings")
	{
		api.GET("/stats", dashboardStatsHandler(dashboardRepo, logger))
		api.POST("", createBookingHandler(bookingService, logger))
		api.GET("", listBookingsHandler(bookingService, logger))
		api.GET("/status/:status", listBookingsByStatusHandler(bookingService, logger))
		api.GET("/:bookingId", getBookingHandler(bookingService, logger))
		api.PATCH("/:bookingId", updateBookingHandler(bookingService, logger))
		api.POST("/:bookingId/transition", transitionBookingHandler(bookingService, logger))
		api.POST("/:bookingId/cancel", cancelBookingHandler(bookingService, logger))
		api.DELETE("/:bookingId", deleteBookingHandler(bookingService, logger))
		api.PUT("/:bookingId/containers", upsertContainerDetailHandler(bookingService, logger))
		api.POST("/:bookingId/containers/:containerDetailId/allocation", advanceAllocationHandler(bookingService, logger))
		api.PUT("/:bookingId/driver-allocations/:phase", replaceDriverAllocationHandler(bookingService, logger))
		api.POST("/:bookingId/routing/legs", generateRoutingLegsHandler(bookingService, logger))
		api.GET("/:bookingId/routing/legs", orderedLegsHandler(bookingService, logger))
	}

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr string
	MongoDB    *mongodb.Config
	Kafka      *kafka.Config
}

func loadConfig() *Config {
	mongoConfig := mongodb.DefaultConfig()
	mongoConfig.URI = getEnv("MONGODB_URI", "mongodb://localhost:27017")
	mongoConfig.Database = getEnv("MONGODB_DATABASE", "freight_bookings")

	kafkaConfig := kafka.DefaultConfig()
	kafkaConfig.Brokers = []string{getEnv("KAFKA_BROKERS", "localhost:9092")}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		MongoDB:    mongoConfig,
		Kafka:      kafkaConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// mapDomainError translates domain sentinel errors into transport errors
func mapDomainError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, domain.ErrBookingNotFound):
		return apperrors.ErrNotFound("booking")
	case errors.Is(err, domain.ErrContainerDetailNotFound):
		return apperrors.ErrNotFound("container detail")
	case errors.Is(err, domain.ErrIllegalStatusTransition):
		return apperrors.NewAppError(apperrors.CodeIllegalStatusTransition, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrBookingLocked):
		return apperrors.NewAppError(apperrors.CodeBookingLocked, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrBookingNotDeletable),
		errors.Is(err, domain.ErrContainerDetailFrozen),
		errors.Is(err, domain.ErrConcurrentModification):
		return apperrors.ErrConflict(err.Error())
	case errors.Is(err, domain.ErrQuantityExceedsPriorStage):
		return apperrors.ErrQuantityExceedsPriorStage(err.Error())
	case errors.Is(err, domain.ErrDiscontinuousLegChain):
		return apperrors.NewAppError(apperrors.CodeDiscontinuousLegChain, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrStageNotLater),
		errors.Is(err, domain.ErrInvalidDirection),
		errors.Is(err, domain.ErrInvalidRoutingPhase),
		errors.Is(err, domain.ErrTareNotBelowGross):
		return apperrors.ErrBadRequest(err.Error())
	default:
		return apperrors.FromError(err)
	}
}

func respondError(responder *middleware.ErrorResponder, err error) {
	responder.RespondWithAppError(mapDomainError(err))
}

func setBookingSpanID(c *gin.Context, bookingID string) {
	middleware.SpanFromGinContext(c).SetAttributes(attribute.String("booking.id", bookingID))
}

// HTTP handlers

func createBookingHandler(service *application.BookingService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.CreateBookingRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.CreateBookingCommand{
			BookingNumber: req.BookingNumber,
			Direction:     domain.Direction(req.Direction),
			From:          req.From.Ref(domain.CollectionCustomer),
			To:            req.To.Ref(domain.CollectionCustomer),
			VesselID:      req.VesselID.Int64(),
			VoyageNo:      req.VoyageNo,
		}
		if req.Empty != nil {
			phase := req.Empty.ToDomain(domain.PhaseEmpty)
			cmd.Empty = &phase
		}
		if req.Full != nil {
			phase := req.Full.ToDomain(domain.PhaseFull)
			cmd.Full = &phase
		}

		booking, err := service.CreateBooking(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		setBookingSpanID(c, booking.BookingID)
		c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
	}
}

func listBookingsHandler(service *application.BookingService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var query dto.ListBookingsQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			responder.RespondWithAppError(apperrors.ErrValidationWithFields(
				"invalid list parameters", middleware.ValidationErrorFormatter(err)))
			return
		}

		pagination := query.Pagination()
		bookings, total, err := service.ListBookings(c.Request.Context(), query.Filter(), pagination)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, dto.ToBookingListResponse(bookings, total, pagination.Page, pagination.PageSize))
	}
}

func listBookingsByStatusHandler(service *application.BookingService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		status := domain.BookingStatus(c.Param("status"))
		if !status.IsValid() {
			responder.RespondBadRequest("unknown booking status: " + c.Param("status"))
			return
		}

		var query dto.ListBookingsQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			responder.RespondWithAppError(apperrors.ErrValidationWithFields(
				"invalid list parameters", middleware.ValidationErrorFormatter(err)))
			return
		}

		pagination := query.Pagination()
		bookings, err := service.ListBookingsByStatus(c.Request.Context(), status, pagination)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, dto.ToBookingListResponse(bookings, int64(len(bookings)), pagination.Page, pagination.PageSize))
	}
}

func getBookingHandler(service *application.BookingService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		bookingID := c.Param("bookingId")
		setBookingSpanID(c, bookingID)

		booking, err := service.GetBooking(c.Request.Context(), bookingID)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
	}
}

func updateBookingHandler(service *application.BookingService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.UpdateBookingRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.UpdateBookingCommand{
			BookingID: c.Param("bookingId"),
			VoyageNo:  req.VoyageNo,
		}
		if req.From != nil {
			cmd.From = req.From.Ref(domain.CollectionCustomer)
		}
		if req.To != nil {
			cmd.To = req.To.Ref(domain.CollectionCustomer)
		}
		if req.VesselID != nil {
			vesselID := req.VesselID.Int64()
			cmd.VesselID = &vesselID
		}
		if req.Empty != nil {
			phase := req.Empty.ToDomain(domain.PhaseEmpty)
			cmd.Empty = &phase
		}
		if req.Full != nil {
			phase := req.Full.ToDomain(domain.PhaseFull)
			cmd.Full = &phase
		}

		setBookingSpanID(c, cmd.BookingID)
		booking, err := service.UpdateBooking(c.Request.Context(), cmd)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
	}
}

func transitionBookingHandler(service *application.BookingService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.TransitionBookingRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		bookingID := c.Param("bookingId")
		setBookingSpanID(c, bookingID)

		booking, err := service.TransitionBooking(c.Request.Context(), application.TransitionBookingCommand{
			BookingID: bookingID,
			Target:    domain.BookingStatus(req.Target),
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
	}
}

func cancelBookingHandler(service *application.BookingService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.CancelBookingRequest
		if c.Request.ContentLength > 0 {
			if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
				responder.RespondWithAppError(appErr)
				return
			}
		}

		bookingID := c.Param("bookingId")
		setBookingSpanID(c, bookingID)

		booking, err := service.CancelBooking(c.Request.Context(), application.CancelBookingCommand{
			BookingID: bookingID,
			Reason:    req.Reason,
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
	}
}

func deleteBookingHandler(service *application.BookingService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		bookingID := c.Param("bookingId")
		setBookingSpanID(c, bookingID)

		if err := service.DeleteBooking(c.Request.Context(), application.DeleteBookingCommand{BookingID: bookingID}); err != nil {
			respondError(responder, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func upsertContainerDetailHandler(service *application.BookingService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.ContainerDetailRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		bookingID := c.Param("bookingId")
		setBookingSpanID(c, bookingID)

		booking, err := service.UpsertContainerDetail(c.Request.Context(), application.UpsertContainerDetailCommand{
			BookingID: bookingID,
			Detail:    req.ToDomain(),
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
	}
}

func advanceAllocationHandler(service *application.BookingService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.AdvanceAllocationRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		bookingID := c.Param("bookingId")
		setBookingSpanID(c, bookingID)

		booking, err := service.AdvanceStockAllocation(c.Request.Context(), application.AdvanceStockAllocationCommand{
			BookingID:         bookingID,
			ContainerDetailID: c.Param("containerDetailId"),
			TargetStage:       domain.AllocationStage(req.TargetStage),
			ProductLines:      req.DomainLines(),
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
	}
}

func replaceDriverAllocationHandler(service *application.BookingService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		phase := domain.RoutingPhaseName(c.Param("phase"))
		if !phase.IsValid() {
			responder.RespondBadRequest("unknown routing phase: " + c.Param("phase"))
			return
		}

		var req dto.DriverAllocationRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		bookingID := c.Param("bookingId")
		setBookingSpanID(c, bookingID)

		booking, err := service.ReplaceDriverAllocation(c.Request.Context(), application.ReplaceDriverAllocationCommand{
			BookingID:  bookingID,
			Allocation: req.ToDomain(phase),
		})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
	}
}

func generateRoutingLegsHandler(service *application.BookingService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		bookingID := c.Param("bookingId")
		setBookingSpanID(c, bookingID)

		booking, err := service.GenerateRoutingLegs(c.Request.Context(), application.GenerateRoutingLegsCommand{BookingID: bookingID})
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
	}
}

func dashboardStatsHandler(repo *projections.DashboardRepository, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		stats, err := repo.GetStats(c.Request.Context())
		if err != nil {
			responder.RespondInternalError(err)
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

func orderedLegsHandler(service *application.BookingService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		bookingID := c.Param("bookingId")
		setBookingSpanID(c, bookingID)

		booking, err := service.GetBooking(c.Request.Context(), bookingID)
		if err != nil {
			respondError(responder, err)
			return
		}

		c.JSON(http.StatusOK, dto.ToOrderedLegsResponse(booking))
	}
}
