package health

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	config "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Pinger is the part of a store client the health checker needs
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// HealthChecker provides health check functionality
type HealthChecker struct {
	store  StoreState
	client Pinger
}

// NewHealthChecker creates a new health checker. client may be nil when the
// store does not need pinging.
func NewHealthChecker(store StoreState, client Pinger) *HealthChecker {
	return &HealthChecker{store: store, client: client}
}

// CheckStoreHealth reports why the store cannot serve requests, or nil
func (h *HealthChecker) CheckStoreHealth(ctx context.Context) error {
	if _, err := h.store.Repository(); err != nil {
		return err
	}
	if h.client == nil {
		return nil
	}
	if err := h.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("store ping failed: %w", err)
	}
	return nil
}

// GetHealthStatus returns the current health status
func (h *HealthChecker) GetHealthStatus(ctx context.Context) map[string]interface{} {
	checks := make(map[string]interface{})
	status := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
		"status":    "ok",
	}

	if err := h.CheckStoreHealth(ctx); err != nil {
		checks["store"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
		status["status"] = "degraded"
	} else {
		checks["store"] = map[string]interface{}{
			"status": "ok",
		}
	}

	return status
}

// ConnectMongoWithTimeout connects to MongoDB and pings the primary once
// within the configured connect timeout
func ConnectMongoWithTimeout(cfg *config.DatabaseConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI)
	clientOptions.SetServerSelectionTimeout(cfg.ConnectTimeout)
	clientOptions.SetConnectTimeout(cfg.ConnectTimeout)

	// Atlas (mongodb+srv) requires TLS; ApplyURI already enables it there
	if clientOptions.TLSConfig != nil {
		clientOptions.TLSConfig.MinVersion = tls.VersionTLS12
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("unable to ping MongoDB: %w", err)
	}

	return client, nil
}
