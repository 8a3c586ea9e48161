package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/safestreet/internal/client/otpflow"
	"github.com/shandysiswandi/safestreet/internal/client/session"
)

// otpBackend adapts API to the otpflow session.
type otpBackend struct{ api API }

func (b otpBackend) SendOTP(ctx context.Context, email string) error {
	return b.api.SendOTP(ctx, email)
}

func (b otpBackend) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	tkn, err := b.api.VerifyOTP(ctx, email, code)
	return tkn.AccessToken, err
}

// verify runs the OTP screen for a.pending.
func (a *App) verify(ctx context.Context) (screen, error) {
	flow := otpflow.New(otpflow.Options{
		Backend:   otpBackend{api: a.api},
		NewTicker: a.newTicker,
		OnVerified: func(ctx context.Context, t otpflow.Target, token string) error {
			return a.sessions.Login(ctx, session.Auth{Email: t.Email, Mobile: t.Mobile, Token: token})
		},
		OnTick: a.onTick,
	})
	defer flow.Leave()

	flow.Start(a.pending)
	a.out.printf("Enter the 6-digit code sent to %s. You have %s.\n", a.pending.Email, formatCountdown(otpflow.Window))

	for {
		line, err := readLine(a.in, a.out, a.otpPrompt(flow))
		if err != nil {
			return screenExit, err
		}

		cmd, args := command(line)
		if isDigits(cmd) {
			cmd, args = "verify", []string{cmd}
		}

		switch cmd {
		case "":
			continue

		case "help":
			a.out.println("Available commands: verify <code>, resend, back, exit")

		case "verify", "v":
			code := ""
			if len(args) > 0 {
				code = args[0]
			}
			err := flow.Submit(ctx, code)
			if errors.Is(err, otpflow.ErrSessionNotSaved) {
				slog.ErrorContext(ctx, "failed to save session", "email", a.pending.Email, "error", err)
				a.out.println("The code was accepted but your session could not be saved. Type 'resend' for a new code.")
				continue
			}
			if err != nil {
				a.report(ctx, "verify-otp", err)
				continue
			}
			a.out.println("OTP verified successfully")
			a.pending = otpflow.Target{}
			return screenProfile, nil

		case "resend", "r":
			err := flow.Resend(ctx)
			if errors.Is(err, otpflow.ErrResendNotAllowed) {
				a.out.printf("You can request a new code in %s.\n", formatCountdown(flow.Remaining()))
				continue
			}
			if err != nil {
				a.report(ctx, "resend-otp", err)
				continue
			}
			a.out.println("OTP sent successfully. Check your inbox.")

		case "back", "b":
			a.pending = otpflow.Target{}
			return screenLogin, nil

		case "exit", "quit":
			return screenExit, nil

		default:
			a.out.println("Unknown command:", cmd)
		}
	}
}

func (a *App) otpPrompt(flow *otpflow.Session) string {
	if flow.Expired() {
		return "otp expired (resend) > "
	}
	return "otp " + formatCountdown(flow.Remaining()) + " > "
}

// onTick keeps the countdown visible on a terminal and announces expiry
// everywhere.
func (a *App) onTick(remaining int) {
	switch {
	case remaining == 0:
		a.out.println("\nThe code has expired. Type 'resend' for a new one.")
	case a.tty:
		// Redraw the prompt line in place.
		a.out.printf("\r\033[2Kotp %s > ", formatCountdown(remaining))
	}
}
