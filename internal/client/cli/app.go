// Package cli is the interactive terminal client: login by OTP, then the
// profile and photo commands.
package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/shandysiswandi/safestreet/internal/client/api"
	"github.com/shandysiswandi/safestreet/internal/client/otpflow"
	"github.com/shandysiswandi/safestreet/internal/client/session"
)

// API is the server surface the screens use. *api.Client satisfies it.
type API interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) (api.Token, error)
	GetUser(ctx context.Context, token, email string) (api.User, error)
	UploadProfilePic(ctx context.Context, token string, f api.File) (string, error)
	UploadPhoto(ctx context.Context, token string, f api.File, lat, lng float64) (api.UploadedPhoto, error)
	ListPhotos(ctx context.Context, token string) ([]api.Photo, error)
}

type screen int

const (
	screenLogin screen = iota
	screenOTP
	screenProfile
	screenExit
)

type Options struct {
	API       API
	Sessions  *session.Manager
	In        io.Reader
	Out       io.Writer
	// TTY enables the live countdown line.
	TTY       bool
	// NewTicker defaults to a wall-clock ticker.
	NewTicker otpflow.NewTickerFunc
}

type App struct {
	api       API
	sessions  *session.Manager
	in        *bufio.Reader
	out       *lockedWriter
	tty       bool
	newTicker otpflow.NewTickerFunc

	// pending is the login in progress between the login and OTP screens.
	pending otpflow.Target
}

func New(opts Options) *App {
	if opts.NewTicker == nil {
		opts.NewTicker = otpflow.RealTicker
	}
	return &App{
		api:       opts.API,
		sessions:  opts.Sessions,
		in:        bufio.NewReader(opts.In),
		out:       &lockedWriter{w: opts.Out},
		tty:       opts.TTY,
		newTicker: opts.NewTicker,
	}
}

// Run shows the first screen and loops until the user exits, the input ends
// or ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	a.out.println("SafeStreet (type 'help' for commands)")

	next := screenLogin
	if _, ok, err := a.sessions.Load(ctx); err != nil {
		slog.WarnContext(ctx, "failed to load session", "error", err)
	} else if ok {
		next = screenProfile
	}

	for next != screenExit {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var err error
		switch next {
		case screenLogin:
			next, err = a.login(ctx)
		case screenOTP:
			next, err = a.verify(ctx)
		case screenProfile:
			next, err = a.profile(ctx)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
	}

	a.out.println("Bye!")
	return nil
}

// report prints err for the user. Server errors carry their own message.
func (a *App) report(ctx context.Context, op string, err error) {
	slog.DebugContext(ctx, "command failed", "op", op, "error", err)
	a.out.println("Error:", err.Error())
}
