package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/shandysiswandi/safestreet/internal/client/api"
)

// profile is the signed-in screen.
func (a *App) profile(ctx context.Context) (screen, error) {
	auth, ok := a.sessions.Current()
	if !ok {
		return screenLogin, nil
	}

	if next, done := a.showProfile(ctx, auth.Token, auth.Email); done {
		return next, nil
	}

	for {
		line, err := readLine(a.in, a.out, "safestreet "+auth.Email+" > ")
		if err != nil {
			return screenExit, err
		}

		cmd, args := command(line)
		var failed error
		switch cmd {
		case "":
			continue

		case "help":
			a.out.println("Available commands: profile, photos, upload <file> <lat> <lng>, avatar <file>, logout, exit")

		case "profile", "p":
			if next, done := a.showProfile(ctx, auth.Token, auth.Email); done {
				return next, nil
			}

		case "photos", "l":
			failed = a.listPhotos(ctx, auth.Token)

		case "upload", "u":
			failed = a.uploadPhoto(ctx, auth.Token, args)

		case "avatar":
			failed = a.uploadAvatar(ctx, auth.Token, args)

		case "logout":
			return a.logout(ctx)

		case "exit", "quit":
			return screenExit, nil

		default:
			a.out.println("Unknown command:", cmd)
		}

		if failed != nil {
			if unauthorized(failed) {
				a.out.println("Your session has expired. Please log in again.")
				return a.logout(ctx)
			}
			a.report(ctx, cmd, failed)
		}
	}
}

// showProfile prints the user. done is set when the session is no longer
// usable and the screen must change.
func (a *App) showProfile(ctx context.Context, token, email string) (screen, bool) {
	u, err := a.api.GetUser(ctx, token, email)
	if err != nil {
		if unauthorized(err) {
			a.out.println("Your session has expired. Please log in again.")
			next, _ := a.logout(ctx)
			return next, true
		}
		a.report(ctx, "get-user", err)
		return screenProfile, false
	}

	a.out.printf("Name:    %s\nEmail:   %s\nMobile:  %s\nRole:    %s\nUploads: %d\n", u.Name, u.Email, u.Mobile, u.Role, u.TotalUploads)
	if u.ProfilePicURL != "" {
		a.out.printf("Picture: %s\n", u.ProfilePicURL)
	}
	return screenProfile, false
}

func (a *App) listPhotos(ctx context.Context, token string) error {
	photos, err := a.api.ListPhotos(ctx, token)
	if err != nil {
		return err
	}
	if len(photos) == 0 {
		a.out.println("No photos yet.")
		return nil
	}

	for _, p := range photos {
		a.out.printf("%s  %s  (%.5f, %.5f)  %s\n", p.UploadDate.Format("2006-01-02 15:04"), p.UserEmail, p.Latitude, p.Longitude, p.URL)
	}
	return nil
}

func (a *App) uploadPhoto(ctx context.Context, token string, args []string) error {
	if len(args) != 3 {
		a.out.println("Usage: upload <file> <latitude> <longitude>")
		return nil
	}

	lat, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		a.out.println("Latitude must be a number")
		return nil
	}
	lng, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		a.out.println("Longitude must be a number")
		return nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	out, err := a.api.UploadPhoto(ctx, token, api.File{Name: f.Name(), Reader: f}, lat, lng)
	if err != nil {
		return err
	}

	a.out.printf("Photo uploaded successfully (%s)\n", out.ID)
	return nil
}

func (a *App) uploadAvatar(ctx context.Context, token string, args []string) error {
	if len(args) != 1 {
		a.out.println("Usage: avatar <file>")
		return nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	url, err := a.api.UploadProfilePic(ctx, token, api.File{Name: f.Name(), Reader: f})
	if err != nil {
		return err
	}

	a.out.printf("Profile picture uploaded: %s\n", url)
	return nil
}

func (a *App) logout(ctx context.Context) (screen, error) {
	if err := a.sessions.Logout(ctx); err != nil {
		a.report(ctx, "logout", err)
	}
	a.out.println("Logged out.")
	return screenLogin, nil
}

func unauthorized(err error) bool {
	var aerr *api.Error
	return errors.As(err, &aerr) && aerr.Status == http.StatusUnauthorized
}
