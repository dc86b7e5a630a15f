package container

import (
	"context"
	"fmt"
	"sync"

	"gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.ApiService/health"
	"gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.ApiService/implementation/publisher"
	config "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Config"
	logger "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Logger"
	implementation "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Repository/Implementation"
	interfaces "gitlab.com/maplesense1/mpt.led_panel/src/production/MQT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container manages dependencies and their lifecycle
type Container struct {
	config *config.Config
	logger *logger.Logger

	mongoClient *mongo.Client
	publisher   interfaces.StatePublisher

	// Mutex for thread-safe access
	mu sync.Mutex

	// Cleanup functions, run in reverse order on Shutdown
	cleanupFuncs []func() error
}

// NewApiContainer creates a new container for the API service
func NewApiContainer() (*Container, error) {
	cfg, err := config.LoadApiConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load API configuration: %w", err)
	}

	return NewContainerWithConfig(cfg, logger.NewLogger(&cfg.Logging)), nil
}

// NewContainerWithConfig builds a container around an already loaded config
func NewContainerWithConfig(cfg *config.Config, log *logger.Logger) *Container {
	return &Container{
		config: cfg,
		logger: log,
	}
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.logger
}

// ConnectStore opens the configured device store once. A failed connection
// is logged and returned as an unavailable store so the process keeps
// running in degraded mode.
func (c *Container) ConnectStore() health.StoreState {
	dbCfg := c.config.Database

	if dbCfg.Driver == config.StoreDriverMemory {
		c.logger.Warn("Using in-memory device store, state is lost on restart")
		return health.Connected(implementation.NewMemoryDeviceRepository())
	}

	client, err := health.ConnectMongoWithTimeout(&dbCfg)
	if err != nil {
		c.logger.WarnWithError(err, "MongoDB connection error, API will report the database as unavailable")
		return health.Unavailable(err)
	}

	c.mu.Lock()
	c.mongoClient = client
	c.cleanupFuncs = append(c.cleanupFuncs, func() error {
		return client.Disconnect(context.Background())
	})
	c.mu.Unlock()

	c.logger.Logger.Info().
		Str("database", dbCfg.DBName).
		Str("collection", dbCfg.CollectionName).
		Msg("Successfully connected to MongoDB")

	coll := client.Database(dbCfg.DBName).Collection(dbCfg.CollectionName)
	return health.Connected(implementation.NewMongoDeviceRepository(coll))
}

// GetHealthChecker returns a health checker for the given store
func (c *Container) GetHealthChecker(store health.StoreState) *health.HealthChecker {
	c.mu.Lock()
	defer c.mu.Unlock()

	var pinger health.Pinger
	if c.mongoClient != nil {
		pinger = c.mongoClient
	}
	return health.NewHealthChecker(store, pinger)
}

// GetStatePublisher returns the MQTT publisher, or a no-op one when MQTT is
// disabled or the broker cannot be reached
func (c *Container) GetStatePublisher() interfaces.StatePublisher {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.publisher != nil {
		return c.publisher
	}

	if !c.config.MQTT.Enabled {
		c.publisher = publisher.NoopPublisher{}
		return c.publisher
	}

	mqttPublisher, err := publisher.NewMQTTPublisher(c.config, c.logger)
	if err != nil {
		c.logger.WarnWithError(err, "MQTT publisher unavailable, state changes will not be published")
		c.publisher = publisher.NoopPublisher{}
		return c.publisher
	}

	c.publisher = mqttPublisher
	c.cleanupFuncs = append(c.cleanupFuncs, func() error {
		mqttPublisher.Close()
		return nil
	})
	return c.publisher
}

// AddCleanupFunc adds a cleanup function
func (c *Container) AddCleanupFunc(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}

// Shutdown gracefully shuts down the container and all its dependencies
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down container...")

	c.mu.Lock()
	funcs := c.cleanupFuncs
	c.cleanupFuncs = nil
	c.mu.Unlock()

	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](); err != nil {
			c.logger.ErrorWithError(err, "Error during cleanup")
		}
	}

	c.logger.Info("Container shutdown complete")
	return nil
}
