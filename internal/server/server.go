package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	wishlogging "github.com/charmbracelet/wish/logging"

	"github.com/renato0307/duet/internal/domain"
	"github.com/renato0307/duet/internal/logging"
	"github.com/renato0307/duet/internal/services"
)

const shutdownTimeout = 30 * time.Second

// Controller is the part of the session manager the relay drives
type Controller interface {
	GetAll() []domain.ProcessInfo
	Interrupt(sessionID string, role domain.Role) error
	Kill(sessionID string) bool
	KillRole(sessionID string, role domain.Role) bool
	Prompt(sessionID, text string) error
	Resize(sessionID string, role domain.Role, cols, rows uint16) error
	RunCommand(ctx context.Context, sessionID, command, cwd, shell string) (*domain.CommandResult, error)
	Spawn(ctx context.Context, req domain.SpawnRequest) (int, error)
	Subscribe() *services.Subscription
	Write(sessionID string, role domain.Role, data []byte) error
}

// Config holds the relay listen address and key locations
type Config struct {
	AuthorizedKeysPath string
	HostKeyPath        string
	Host               string
	Port               string
}

// Server is the SSH relay: every SSH exec request is one control command
type Server struct {
	addr               string
	authorizedKeysPath string
	controller         Controller
	wishServer         *ssh.Server
}

// NewServer creates a new SSH relay over the given controller
func NewServer(cfg Config, controller Controller) (*Server, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.HostKeyPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create SSH directory: %w", err)
	}

	s := &Server{
		addr:               net.JoinHostPort(cfg.Host, cfg.Port),
		authorizedKeysPath: cfg.AuthorizedKeysPath,
		controller:         controller,
	}

	// Middleware executes in reverse order (last to first)
	wishServer, err := wish.NewServer(
		wish.WithAddress(s.addr),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithPublicKeyAuth(s.publicKeyHandler),
		wish.WithMiddleware(
			s.relayMiddleware(),
			wishlogging.Middleware(),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH server: %w", err)
	}

	s.wishServer = wishServer
	return s, nil
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.addr
}

// Start listens on the configured address and serves until ctx is done
func (s *Server) Start(ctx context.Context) error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, l)
}

// Serve accepts connections on l until ctx is done, then shuts down
// gracefully
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	logging.Logger.Info("Starting SSH relay", "address", l.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.wishServer.Serve(l)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			return fmt.Errorf("SSH relay stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Logger.Info("Shutting down SSH relay")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.wishServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown SSH server: %w", err)
	}

	logging.Logger.Info("SSH relay stopped")
	return nil
}

// relayMiddleware runs the exec request as a relay command and exits the
// SSH session with its code
func (s *Server) relayMiddleware() wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			start := time.Now()
			remote := fmt.Sprintf("%s@%s", sess.User(), sess.RemoteAddr().String())
			logging.Logger.Info("Relay command", "remote", remote, "command", sess.Command())

			code := Dispatch(sess.Context(), s.controller, sess.Command(), sess, sess, sess.Stderr())

			logging.Logger.Info("Relay command finished",
				"remote", remote,
				"exit_code", code,
				"duration", time.Since(start).String())
			_ = sess.Exit(code)
			next(sess)
		}
	}
}
