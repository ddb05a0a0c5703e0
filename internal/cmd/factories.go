package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	adapterprocess "github.com/renato0307/duet/internal/adapters/process"
	adaptersound "github.com/renato0307/duet/internal/adapters/sound"
	adapterstorage "github.com/renato0307/duet/internal/adapters/storage"
	"github.com/renato0307/duet/internal/agents"
	"github.com/renato0307/duet/internal/config"
	"github.com/renato0307/duet/internal/logging"
	"github.com/renato0307/duet/internal/ports"
	"github.com/renato0307/duet/internal/services"
)

const shutdownTimeout = 10 * time.Second

// Container holds all dependencies for the application
type Container struct {
	// Services
	AgentRegistry       *agents.Registry
	NotificationService *services.NotificationService
	ProcessManager      *services.ProcessManager
	SessionHistory      ports.SessionHistoryReader
	SettingsService     *services.SettingsService

	// Internal - for cleanup only
	background sync.WaitGroup
	cancel     context.CancelFunc
	ctx        context.Context
	history    *adapterstorage.SQLiteRepository
}

// NewContainer creates a new Container with all dependencies wired.
// Session history is recorded from the first spawn on.
func NewContainer(settings *config.Settings) (*Container, error) {
	if settings == nil {
		settings = &config.Settings{}
	}

	descriptors, err := config.LoadAgentDescriptors()
	if err != nil {
		return nil, err
	}
	agentRegistry := agents.LoadRegistry(descriptors, settings.AgentPaths())

	history, err := adapterstorage.NewSQLiteRepository(config.GetDBPath())
	if err != nil {
		return nil, err
	}

	killGrace := services.DefaultKillGrace
	if settings.KillGraceSeconds != nil {
		killGrace = time.Duration(*settings.KillGraceSeconds) * time.Second
	}

	settingsService := services.NewSettingsService(settings)
	processManager := services.NewProcessManager(
		adapterprocess.NewLauncher(),
		agentRegistry,
		settingsService,
		services.WithKillGrace(killGrace),
	)

	ctx, cancel := context.WithCancel(context.Background())
	c := &Container{
		AgentRegistry:       agentRegistry,
		NotificationService: services.NewNotificationService(adaptersound.NewPlayer()),
		ProcessManager:      processManager,
		SessionHistory:      history,
		SettingsService:     settingsService,
		cancel:              cancel,
		ctx:                 ctx,
		history:             history,
	}

	recorder := services.NewHistoryRecorder(history)
	c.runBackground(func(sub *services.Subscription) { recorder.Run(ctx, sub) })

	return c, nil
}

// EnableNotifications plays a sound when an agent finishes or fails
func (c *Container) EnableNotifications() {
	c.runBackground(func(sub *services.Subscription) { c.NotificationService.Run(c.ctx, sub) })
}

// runBackground subscribes now and consumes in a goroutine until the
// process manager shuts down
func (c *Container) runBackground(run func(sub *services.Subscription)) {
	sub := c.ProcessManager.Subscribe()
	c.background.Add(1)
	go func() {
		defer c.background.Done()
		defer sub.Close()
		run(sub)
	}()
}

// Close kills any process still running, drains the background
// subscribers and closes the history database
func (c *Container) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := c.ProcessManager.Shutdown(ctx); err != nil {
		logging.Logger.Warn("Processes still running at shutdown", "error", err)
		c.cancel()
	}
	c.background.Wait()
	c.cancel()

	if err := c.history.Close(); err != nil {
		return fmt.Errorf("failed to close session history: %w", err)
	}
	return nil
}
