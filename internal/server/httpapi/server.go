// Package httpapi is the REST edge of the finsync server. Handlers bind and
// validate JSON bodies, call the services, and translate sentinel errors
// 1:1 to HTTP status plus a machine-readable reason code. No business rule
// lives here.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/avoropay/finsync/internal/logging"
	"github.com/avoropay/finsync/internal/server/models"
	"github.com/avoropay/finsync/internal/server/services"
	"github.com/gin-gonic/gin"
)

// AuthService is the slice of UserService the handlers need.
type AuthService interface {
	Register(ctx context.Context, username, password, confirmPassword string) (*services.RegisteredUser, error)
	Login(ctx context.Context, username, password, deviceID string) (*services.LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ResetPassword(ctx context.Context, username, recoveryKey, newPassword string) error
}

// SyncService is the slice of the sync engine the handlers need.
type SyncService interface {
	Pull(ctx context.Context, userID string, sinceVersion int64) (*services.Delta, error)
	Push(ctx context.Context, userID string, incoming []*models.Transaction) (*services.PushResult, error)
	ListAll(ctx context.Context, userID string) ([]*models.Transaction, error)
}

// BudgetService is the slice of the budget module the handlers need.
type BudgetService interface {
	List(ctx context.Context, userID string) ([]*models.Budget, error)
	Set(ctx context.Context, userID, categoryID string, amount float64, year, month int) (*models.Budget, error)
	Update(ctx context.Context, b *models.Budget) error
	Delete(ctx context.Context, userID, id string) error
	Usage(ctx context.Context, userID, categoryID string, year, month int) (*models.BudgetUsage, error)
}

// ReceiptService hands out presigned receipt URLs.
type ReceiptService interface {
	GetUploadURL(ctx context.Context, userID string) (string, string, error)
	GetDownloadURL(ctx context.Context, key string) (string, error)
}

// Server serves the REST API.
type Server struct {
	address   string
	logger    logging.Logger
	jwtSecret []byte
	auth      AuthService
	sync      SyncService
	budgets   BudgetService
	receipts  ReceiptService
}

func NewServer(address string, l logging.Logger, secretKey string,
	auth AuthService, sync SyncService, budgets BudgetService, receipts ReceiptService) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "httpapi"),
		jwtSecret: []byte(secretKey),
		auth:      auth,
		sync:      sync,
		budgets:   budgets,
		receipts:  receipts,
	}
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.accessLog())

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.POST("/refresh", s.refresh)
	authGroup.POST("/logout", s.logout)
	authGroup.POST("/reset-password", s.resetPassword)

	authed := api.Group("", s.requireAccessToken())

	syncGroup := authed.Group("/sync")
	syncGroup.GET("", s.pull)
	syncGroup.POST("", s.push)
	syncGroup.GET("/transactions", s.listTransactions)
	syncGroup.POST("/transactions/upload", s.uploadTransactions)

	budgetGroup := authed.Group("/budgets")
	budgetGroup.GET("", s.listBudgets)
	budgetGroup.POST("", s.setBudget)
	budgetGroup.PUT("/:id", s.updateBudget)
	budgetGroup.DELETE("/:id", s.deleteBudget)
	budgetGroup.GET("/usage", s.budgetUsage)

	receiptGroup := authed.Group("/receipts")
	receiptGroup.POST("", s.createReceiptUpload)
	receiptGroup.GET("/url", s.receiptDownloadURL)

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
