package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"

	"github.com/renato0307/duet/internal/config"
	"github.com/renato0307/duet/internal/logging"
	"github.com/renato0307/duet/internal/server"
)

// ServeCmd starts the SSH relay
type ServeCmd struct {
	AuthorizedKeys string `help:"authorized_keys file used to authenticate clients" default:"~/.ssh/authorized_keys"`
	Host           string `help:"Host to bind to (overrides server_host in settings.json)" env:"DUET_SERVER_HOST"`
	Notify         bool   `help:"Play a sound when an agent finishes"`
	Port           string `help:"Port to listen on (overrides server_port in settings.json)" env:"DUET_SERVER_PORT"`
}

// Run executes the serve command
func (s *ServeCmd) Run(cli *CLI) error {
	host, port := s.resolveAddress(cli.settings)

	if err := os.MkdirAll(config.GetDuetHome(), 0755); err != nil {
		return fmt.Errorf("failed to create duet home: %w", err)
	}
	lock := flock.New(config.GetServeLockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire serve lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another duet serve is already running for %s", config.GetDuetHome())
	}
	defer lock.Unlock()

	if s.Notify {
		cli.Container.EnableNotifications()
	}

	srv, err := server.NewServer(server.Config{
		AuthorizedKeysPath: config.ExpandPath(s.AuthorizedKeys),
		HostKeyPath:        filepath.Join(config.GetSSHDir(), "id_ed25519"),
		Host:               host,
		Port:               port,
	}, cli.Container.ProcessManager)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Logger.Info("Starting duet SSH relay", "host", host, "port", port)
	fmt.Printf("SSH relay listening on %s\n", srv.Addr())

	// Blocks until shutdown
	return srv.Start(ctx)
}

// resolveAddress applies flag/env > settings.json > default
func (s *ServeCmd) resolveAddress(settings *config.Settings) (string, string) {
	host, port := s.Host, s.Port
	if settings != nil {
		if host == "" {
			host = settings.ServerHost
		}
		if port == "" {
			port = settings.ServerPort
		}
	}
	if host == "" {
		host = config.DefaultServerHost
	}
	if port == "" {
		port = config.DefaultServerPort
	}
	return host, port
}
