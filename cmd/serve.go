package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"sftpfetchapi/config"
	"sftpfetchapi/controllers"
	_ "sftpfetchapi/docs"
	"sftpfetchapi/pkg/logger"
	"sftpfetchapi/repository"
	"sftpfetchapi/services/audit"
	"sftpfetchapi/services/fileops"
	"sftpfetchapi/utils"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Example: `  # Listen on the port from PORT (default 8000)
  sftpfetchapi serve

  # Keep an in-memory audit trail of download requests
  AUDIT_MODE=embedded sftpfetchapi serve`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	initServiceLogger(cmd)
	logger.Infof("Starting %s %s with log level: %s", config.ServiceName, config.Version, logLevel(cmd))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.ConnectDB(ctx); err != nil {
		return fmt.Errorf("connect audit database: %w", err)
	}
	defer config.CloseDB()

	auditSrv := audit.NewAuditServiceWithDeps(nil)
	if repo := repository.NewDownloadAuditRepository(); repo != nil {
		if err := repo.AutoMigrate(); err != nil {
			return fmt.Errorf("migrate audit table: %w", err)
		}
		auditSrv = audit.NewAuditServiceWithDeps(repo)
	}

	controllers.SetFetchService(fileops.NewFetchService())
	controllers.SetAuditService(auditSrv)
	controllers.SetRequestTimeout(config.Cfg.RequestTimeout)

	gin.SetMode(config.Cfg.GinMode)
	srv := &http.Server{
		Addr:    "0.0.0.0:" + config.Cfg.Port,
		Handler: newRouter(auditSrv),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting server at port %s", config.Cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Infof("Received shutdown signal, draining in-flight requests...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("Graceful shutdown incomplete: %v", err)
	}
	logger.Infof("Application shutdown complete")
	return nil
}

// newRouter wires middleware and every route. Controllers must already have their services set.
func newRouter(auditSrv audit.AuditService) *gin.Engine {
	router := gin.New()
	router.Use(utils.RecoveryMiddleware())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		MaxAge:          12 * time.Hour,
	}))
	router.Use(utils.LoggerMiddleware())

	controllers.RegisterHealthRoutes(&router.RouterGroup)
	controllers.RegisterDownloadRoutes(&router.RouterGroup)

	api := router.Group("/api")
	{
		controllers.RegisterDownloadRoutes(api)
		controllers.RegisterDownloadHistoryRoutes(api, controllers.NewDownloadHistoryController(auditSrv))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return router
}
