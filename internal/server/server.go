package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"pixelle/internal/config"
	"pixelle/internal/probe"
	"pixelle/internal/storage"
	"pixelle/pkg/logging"
)

// ShutdownTimeout bounds the graceful shutdown of the HTTP listener.
const ShutdownTimeout = 5 * time.Second

// EngineChecker probes the workflow engine.
type EngineChecker interface {
	Engine(ctx context.Context, endpoint string) error
}

// Server serves the pixelle HTTP surface.
type Server struct {
	store      *config.Store
	engine     EngineChecker
	version    string
	instanceID string
	watch      bool
	notify     bool

	mu  sync.RWMutex
	svc config.ServiceConfig

	mcp        *mcpserver.MCPServer
	streamable *mcpserver.StreamableHTTPServer
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version reported by /health and the MCP handshake.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithEngineChecker replaces the engine probe.
func WithEngineChecker(c EngineChecker) Option {
	return func(s *Server) {
		s.engine = c
	}
}

// WithWatch enables refreshing the store when the env file changes.
func WithWatch(enabled bool) Option {
	return func(s *Server) {
		s.watch = enabled
	}
}

// WithNotify enables sd_notify readiness messages.
func WithNotify(enabled bool) Option {
	return func(s *Server) {
		s.notify = enabled
	}
}

// New creates a Server reading its settings from store.
func New(store *config.Store, opts ...Option) *Server {
	s := &Server{
		store:      store,
		engine:     probe.New(),
		version:    "dev",
		instanceID: uuid.NewString(),
		watch:      true,
		svc:        store.Get().Config.Service,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcpserver.NewMCPServer(
		"pixelle",
		s.version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithInstructions("Pixelle exposes its configuration and file store. "+
			"Use get_config_status to see the engine and providers, and upload_file to store inputs."),
	)
	s.registerTools()
	s.streamable = mcpserver.NewStreamableHTTPServer(s.mcp)
	return s
}

// InstanceID identifies this server process in /health.
func (s *Server) InstanceID() string {
	return s.instanceID
}

// Settings returns the current store snapshot with the service binding
// the server was started with.
func (s *Server) Settings() config.Settings {
	settings := s.store.Get()
	s.mu.RLock()
	settings.Config.Service = s.svc
	s.mu.RUnlock()
	return settings
}

func (s *Server) files() *storage.Store {
	settings := s.Settings()
	return storage.New(settings.StorageDir(),
		storage.WithMaxSize(settings.MaxFileSize),
		storage.WithReadURL(settings.ReadURL()),
	)
}

// Serve binds the service address from settings and serves until ctx is
// cancelled. It matches launcher.ServeFunc.
func (s *Server) Serve(ctx context.Context, settings config.Settings) error {
	addr := settings.Config.Service.Address()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.mu.Lock()
	s.svc = settings.Config.Service
	s.mu.Unlock()
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled or the listener
// fails. A cancelled ctx results in a nil error.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.Info("Server", "Listening on %s (instance %s)", ln.Addr(), s.instanceID)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server on %s failed: %w", ln.Addr(), err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Server", "Shutting down")
		s.sdNotify(daemon.SdNotifyStopping)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.streamable.Shutdown(shutdownCtx); err != nil {
			logging.Warn("Server", "Error shutting down MCP transport: %v", err)
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	if s.watch {
		watcher := config.NewWatcher(s.store)
		if err := watcher.Start(); err != nil {
			logging.Warn("Server", "Env file changes will not be picked up: %v", err)
		} else {
			g.Go(func() error {
				<-gctx.Done()
				return watcher.Stop()
			})
		}
	}

	s.sdNotify(daemon.SdNotifyReady)

	err := g.Wait()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (s *Server) sdNotify(state string) {
	if !s.notify {
		return
	}
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		logging.Warn("Server", "sd_notify %s failed: %v", state, err)
		return
	}
	if sent {
		logging.Debug("Server", "Sent sd_notify %s", state)
	}
}
