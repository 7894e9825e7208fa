package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/steploop/internal/config"
	"github.com/vovakirdan/steploop/internal/platform"
	"github.com/vovakirdan/steploop/internal/registry"
	"github.com/vovakirdan/steploop/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.steploop/host_key.
	HostKeyPath string

	// AppID fixes the application every session runs.
	// If empty, sessions start with the application picker.
	AppID string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// Config is the runtime configuration each session's driver uses.
	Config config.Config
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
		Config:      config.Default(),
	}
}

// SSHServer serves one driven application per SSH session.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	store  *storage.Store
	logger *log.Logger
	active atomic.Int64
}

// sessionKey stores the session's hosted run in the ssh context.
type sessionKey struct{}

// sessionRun is shared between a session's model and the middleware that
// finishes the run once the program has exited.
type sessionRun struct {
	host *platform.Host
	err  error
}

// NewSSHServer creates a new SSH server. store may be nil.
func NewSSHServer(cfg SSHServerConfig, store *storage.Store, logger *log.Logger) (*SSHServer, error) {
	if cfg.AppID != "" && !registry.Exists(cfg.AppID) {
		return nil, fmt.Errorf("unknown application %q", cfg.AppID)
	}
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "steploop-ssh",
		})
	}

	srv := &SSHServer{
		config: cfg,
		store:  store,
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".steploop", "host_key")
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.runMiddleware,
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	run := &sessionRun{}
	sshSession.Context().SetValue(sessionKey{}, run)

	model := newSessionModel(s, run, sshSession.User(), pty.Window.Width, pty.Window.Height)
	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// runMiddleware finishes the session's run after its program exits.
func (s *SSHServer) runMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.active.Add(1)
		defer s.active.Add(-1)

		next(sshSession)

		run, ok := sshSession.Context().Value(sessionKey{}).(*sessionRun)
		if !ok || run.host == nil {
			return
		}
		if err := run.host.Finish(endReason(run.host, run.err)); err != nil {
			s.logger.Warn("could not finish run", "user", sshSession.User(), "error", err)
		}
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// hostFor builds an inactive host for one session.
func (s *SSHServer) hostFor(appID, user string) (*platform.Host, error) {
	return platform.NewHost(platform.Options{
		AppID:    appID,
		Config:   s.config.Config,
		Platform: platform.NameSSH,
		Store:    s.store,
		Logger:   s.logger.With("user", user),
	})
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address, "app", s.config.AppID)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...", "sessions", s.active.Load())
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// ActiveSessions returns the number of sessions currently connected.
func (s *SSHServer) ActiveSessions() int64 {
	return s.active.Load()
}

// SessionModel shows the picker (unless the app is fixed) and then hosts
// the chosen application for the rest of the session.
type SessionModel struct {
	server   *SSHServer
	run      *sessionRun
	user     string
	width    int
	height   int
	menu     MenuModel
	model    *Model
	quitting bool
}

func newSessionModel(s *SSHServer, run *sessionRun, user string, width, height int) SessionModel {
	return SessionModel{
		server: s,
		run:    run,
		user:   user,
		width:  width,
		height: height,
		menu:   NewMenuModel(width, height),
	}
}

// Init starts the fixed application right away when one is configured.
func (m SessionModel) Init() tea.Cmd {
	if appID := m.server.config.AppID; appID != "" {
		return func() tea.Msg { return appChosenMsg(appID) }
	}
	return m.menu.Init()
}

// appChosenMsg starts the hosted application.
type appChosenMsg string

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
	}

	if chosen, ok := msg.(appChosenMsg); ok {
		return m.start(string(chosen))
	}

	if m.model != nil {
		next, cmd := m.model.Update(msg)
		if model, ok := next.(Model); ok {
			m.model = &model
			m.run.err = model.Err()
		}
		return m, cmd
	}

	next, _ := m.menu.Update(msg)
	if menu, ok := next.(MenuModel); ok {
		m.menu = menu
	}
	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.menu.Selected() != "":
		return m.start(m.menu.Selected())
	}
	return m, nil
}

// start switches the session from the picker to a hosted run.
func (m SessionModel) start(appID string) (tea.Model, tea.Cmd) {
	host, err := m.server.hostFor(appID, m.user)
	if err != nil {
		m.server.logger.Error("cannot start application", "app", appID, "error", err)
		m.quitting = true
		return m, tea.Quit
	}
	m.run.host = host

	model := NewModel(host, WithInitialSize(m.width, m.height))
	m.model = &model
	return m, model.Init()
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	if m.model != nil {
		return m.model.View()
	}
	return m.menu.View()
}
