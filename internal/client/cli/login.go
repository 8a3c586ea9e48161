package cli

import (
	"context"

	"github.com/shandysiswandi/safestreet/internal/client/otpflow"
	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
)

// login asks for email and mobile and requests a code.
func (a *App) login(ctx context.Context) (screen, error) {
	a.out.println("Log in with your registered email and mobile number ('exit' to quit).")

	for {
		email, err := readLine(a.in, a.out, "Email\n> ")
		if err != nil {
			return screenExit, err
		}
		if email == "exit" || email == "quit" {
			return screenExit, nil
		}

		mobile, err := readLine(a.in, a.out, "Mobile\n> ")
		if err != nil {
			return screenExit, err
		}

		if email == "" || mobile == "" {
			a.report(ctx, "login", goerror.NewInvalidFormat("Email and mobile are required"))
			continue
		}

		if err := a.api.SendOTP(ctx, email); err != nil {
			a.report(ctx, "send-otp", err)
			continue
		}

		a.out.println("OTP sent successfully. Check your inbox.")
		a.pending = otpflow.Target{Email: email, Mobile: mobile}
		return screenOTP, nil
	}
}
