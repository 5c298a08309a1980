package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/eduxperience/eduxperience/internal/client/backend"
	"github.com/eduxperience/eduxperience/internal/client/config"
	"github.com/eduxperience/eduxperience/internal/client/credentials"
	"github.com/eduxperience/eduxperience/internal/client/models"
	"github.com/eduxperience/eduxperience/internal/client/pending"
	"github.com/eduxperience/eduxperience/internal/client/services"
	"github.com/eduxperience/eduxperience/internal/client/storage/kv"
	"github.com/eduxperience/eduxperience/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	auth   services.AuthService
	flow   *services.LoginFlow
	admin  *services.AdminService
	nav    *ConsoleNavigator
	store  kv.Store
	log    logging.Logger

	reader *bufio.Reader
	out    io.Writer

	// lastUnverified is the email of the last sign-in rejected as
	// unverified; 'resend' defaults to it.
	lastUnverified string

	mu   sync.Mutex
	mode Mode
}

// NewApp opens local storage and the backend client described by c and
// wires the client services on top of them.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	store, err := kv.Open(ctx, kv.Options{DSN: c.StorageDSN, Passphrase: c.StoragePassphrase})
	if err != nil {
		return nil, fmt.Errorf("open local storage: %w", err)
	}

	apiClient, err := backend.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return newApp(c, store, apiClient, os.Stdin, os.Stdout, log), nil
}

func newApp(c *config.Config, store kv.Store, apiClient backend.Client, in io.Reader, out io.Writer, log logging.Logger) *App {
	nav := NewConsoleNavigator(out)
	drafts := pending.NewStore(store, log)
	auth := services.NewAuthService(apiClient, drafts, log)
	router := services.NewRouter(apiClient, drafts, nav, log)
	flow := services.NewLoginFlow(auth, credentials.NewStore(store, log), router, nav, log)
	admin := services.NewAdminService(services.AdminCredentials{
		Username:     c.AdminUsername,
		Password:     c.AdminPassword,
		PasswordHash: c.AdminPasswordHash,
	}, store, log)

	return &App{
		config: c,
		auth:   auth,
		flow:   flow,
		admin:  admin,
		nav:    nav,
		store:  store,
		log:    log.With("module", "cli"),
		reader: bufio.NewReader(in),
		out:    out,
	}
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// Run shows the welcome banner, starts the connectivity watcher and blocks
// in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.store.Close()

	fmt.Fprintln(a.out, "Welcome to EduXperience (type 'help' for commands)")
	if saved, ok := a.flow.SavedLogin(ctx); ok {
		fmt.Fprintf(a.out, "Remembered login: %s (type 'login' to continue)\n", saved.Email)
	}
	_ = a.nav.Navigate(ctx, models.DestinationLogin)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) isLoggedIn() bool {
	_, ok := a.flow.Current()
	return ok
}

func (a *App) getStatus() string {
	s := ""
	if id, ok := a.flow.Current(); ok {
		s = id.Email + " "
	}
	s += string(a.nav.Current())
	if m := a.Mode(); m != "" {
		s += " " + string(m)
	}
	return s
}

// StartOnlineStatusWatcher pings the backend every interval and tracks the
// result in the app's Mode until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.auth.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
