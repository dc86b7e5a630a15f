package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.ApiService/controllers"
	"gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.ApiService/health"
	"gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.ApiService/implementation/devices"
	"gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.ApiService/implementation/devicesync"
	"gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.ApiService/middleware"
	container "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Container"
)

func main() {
	// Initialize dependency injection container
	ctr, err := container.NewApiContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}
	defer ctr.Shutdown(context.Background())

	logger := ctr.GetLogger()
	config := ctr.GetConfig()
	logger.Info("Starting LED panel API")

	// Connect once; failure leaves the API running in degraded mode
	store := ctr.ConnectStore()

	// Reconcile the device collection before accepting requests
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if repo, err := store.Repository(); err == nil {
		reconciler := devicesync.NewReconciler(repo, config.Devices.ResetPolicy, logger)
		if _, err := reconciler.Synchronize(ctx); err != nil {
			logger.WarnWithError(err, "Device synchronization failed, API will report the database as unavailable")
			store = health.Unavailable(err)
		} else if config.Database.EnsurePinIndex {
			if err := repo.EnsurePinIndex(ctx); err != nil {
				logger.WarnWithError(err, "Failed to enforce unique pins")
			}
		}
	}
	cancel()

	deviceService := devices.NewDeviceService(store, ctr.GetStatePublisher(), devices.Options{
		StrictUpdate: config.Devices.StrictUpdate,
		ResetPolicy:  config.Devices.ResetPolicy,
	}, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	// Configure CORS from config
	router.Use(cors.New(cors.Config{
		AllowOrigins:     config.CORS.AllowedOrigins,
		AllowMethods:     config.CORS.AllowedMethods,
		AllowHeaders:     config.CORS.AllowedHeaders,
		ExposeHeaders:    config.CORS.ExposedHeaders,
		AllowCredentials: config.CORS.AllowCredentials,
		MaxAge:           time.Duration(config.CORS.MaxAge) * time.Second,
	}))

	// Register all routes
	controllers.NewDeviceController(deviceService, logger).RegisterRoutes(router)
	controllers.NewPageController(deviceService, logger).RegisterRoutes(router)
	controllers.NewHealthController(ctr.GetHealthChecker(store)).RegisterRoutes(router)

	port := config.Server.Port

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP server starting on port " + port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithError(err, "Failed to start HTTP server")
		}
	}()

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "Server forced to shutdown")
	}
}
