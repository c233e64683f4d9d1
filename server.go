package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/opencantine/pantry_backend/config"
	"github.com/opencantine/pantry_backend/middlewares"
	"github.com/opencantine/pantry_backend/models"
	"github.com/opencantine/pantry_backend/utils"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

// writeModelError maps model error kinds to transport status codes. Models
// never speak HTTP; this is the only place the mapping lives.
func writeModelError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrorInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.LogError(config.GetLogger(), "server.go", "writeModelError", c.FullPath(), gin.H{"correlation_id": cid}, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func writeBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "fields": utils.ProcessValidationErrors(err)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
}

func productsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := models.ListProductsCached(c.Request.Context())
		if err != nil {
			writeModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

func debtsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.DebtFilter

		if v := c.Query("status"); v != "" {
			status := models.DebtStatus(v)
			filter.Status = &status
		}
		if v := c.Query("month_key"); v != "" {
			monthKey := v
			filter.MonthKey = &monthKey
		}
		if v := c.Query("user_id"); v != "" {
			userId, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be an integer"})
				return
			}
			filter.UserId = &userId
		}

		debts, err := models.ListDebts(c.Request.Context(), filter)
		if err != nil {
			writeModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"debts": debts})
	}
}

func debtSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := models.DebtStatusInvoiced
		if v := c.Query("status"); v != "" {
			status = models.DebtStatus(v)
		}

		summary, err := models.DebtSummary(c.Request.Context(), status)
		if err != nil {
			writeModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": status, "summary": summary})
	}
}

func debtSummaryCurrentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		monthKey, summary, err := models.LiveDebtSummary(c.Request.Context())
		if err != nil {
			writeModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"month_key": monthKey, "summary": summary})
	}
}

func userDebtsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, err := strconv.Atoi(c.Param("userId"))
		if err != nil || userId <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId must be a positive integer"})
			return
		}

		var status *models.DebtStatus
		if v := c.Query("status"); v != "" {
			s := models.DebtStatus(v)
			status = &s
		}

		user, debts, err := models.GetUserDebts(c.Request.Context(), userId, status)
		if err != nil {
			writeModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user, "debts": debts})
	}
}

type debtTransitionRequest struct {
	MonthKey string `json:"month_key" binding:"required"`
	UserId   int    `json:"user_id" binding:"required"`
}

func payDebtHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req debtTransitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindingError(c, err)
			return
		}
		if err := models.PayDebt(c.Request.Context(), req.MonthKey, req.UserId); err != nil {
			writeModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func unpayDebtHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req debtTransitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindingError(c, err)
			return
		}
		if err := models.UnpayDebt(c.Request.Context(), req.MonthKey, req.UserId); err != nil {
			writeModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func restockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.NewRestockMovement
		if err := c.ShouldBindJSON(&req); err != nil {
			writeBindingError(c, err)
			return
		}
		movement, err := models.CreateRestockMovement(c.Request.Context(), &req)
		if err != nil {
			writeModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "move_id": movement.ID})
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

// customErrorLogger logs only requests that accumulated gin errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server before the DB is connected; the readiness gate
	// below answers 503 until dependencies are up.
	r := gin.New()

	// Correlation IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	corsConfig := cors.DefaultConfig()
	// In production, require an explicit allowlist via CORS_ALLOWED_ORIGINS.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("x-admin-token", "x-correlation-id", "Origin", "Content-Type")
	corsConfig.AddExposeHeaders("Content-Length")

	// CORS runs ahead of the readiness gate, so a 503 during startup still
	// carries CORS headers and browsers surface the status instead of an
	// opaque network error.
	r.Use(cors.New(corsConfig))

	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	admin := r.Group("/api/admin", middlewares.AdminAuthMiddleware())
	admin.GET("/products", productsHandler())
	admin.GET("/debts", debtsHandler())
	admin.GET("/debts/summary", debtSummaryHandler())
	admin.GET("/debts/summary-current", debtSummaryCurrentHandler())
	admin.GET("/debts/user/:userId", userDebtsHandler())
	admin.POST("/debts/pay", payDebtHandler())
	admin.POST("/debts/unpay", unpayDebtHandler())
	admin.POST("/restock", restockHandler())

	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedis()

	db := config.GetDB()
	sqlDB, err := db.DB()
	if err != nil {
		config.LogError(logger, "server.go", "main", "db.DB", nil, err)
	}
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on :", port)

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownTimeout := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}
