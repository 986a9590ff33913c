package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/foodctl/foodctl/internal/cli/client"
	"github.com/foodctl/foodctl/internal/cli/config"
	"github.com/foodctl/foodctl/internal/cli/session"
)

// Env carries what every page command needs. The root command fills it in
// before any subcommand runs.
type Env struct {
	BaseURL    string
	Store      session.Store
	HTTPClient *http.Client
	Config     *config.Config
	Logger     zerolog.Logger

	Out io.Writer
	Err io.Writer

	// Interactive is true when stdin is a terminal and prompts may be shown
	Interactive bool

	// Now is overridable for tests
	Now func() time.Time
}

// client builds an API client serving the given page
func (e *Env) client(page string) *client.Client {
	opts := []client.Option{
		client.WithStore(e.Store),
		client.WithPage(page),
		client.WithLogger(e.Logger),
	}
	// Logging out with an expired token only drops it, without a login hint
	if page != pageLogout {
		opts = append(opts, client.WithNavigator(client.NewTerminalNavigator(e.stderr())))
	}
	if e.HTTPClient != nil {
		opts = append(opts, client.WithHTTPClient(e.HTTPClient))
	}
	return client.New(e.BaseURL, opts...)
}

func (e *Env) stdout() io.Writer {
	if e.Out != nil {
		return e.Out
	}
	return os.Stdout
}

func (e *Env) stderr() io.Writer {
	if e.Err != nil {
		return e.Err
	}
	return os.Stderr
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) config() *config.Config {
	if e.Config != nil {
		return e.Config
	}
	return &config.Config{}
}

// errSessionExpired is returned after the client has already told the user to
// log in again, so the root command does not print a second message.
var errSessionExpired = errors.New("session expired")

// IsReported reports whether err has already been shown to the user
func IsReported(err error) bool {
	return errors.Is(err, errSessionExpired)
}

// pageError converts a client error into the error a command returns
func pageError(err error, action string) error {
	if errors.Is(err, client.ErrUnauthorized) {
		return errSessionExpired
	}
	return fmt.Errorf("%s: %w", action, err)
}

func formatPrice(p float64) string {
	return fmt.Sprintf("%.0f ₽", p)
}

func formatRating(r *float64) string {
	if r == nil {
		return "Not rated yet"
	}
	return fmt.Sprintf("⭐ %.2f", *r)
}

func formatTime(t client.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
