package inbound

import (
	"log/slog"

	"github.com/shandysiswandi/safestreet/internal/identity/usecase"
	"github.com/shandysiswandi/safestreet/internal/pkg/config"
	"github.com/shandysiswandi/safestreet/internal/pkg/router"
)

// HTTPEndpoint exposes the OTP login and profile handlers.
type HTTPEndpoint struct {
	uc  uc
	cfg config.Config
}

// SendOTP issues a one-time code to the user's email.
// @Summary Send OTP
// @Description Generates a 6-digit code valid for 10 minutes and emails it. Any previous code is replaced.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body SendOTPRequest true "Send OTP payload"
// @Success 200 {object} router.successResponse "OTP sent"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 429 {object} router.errorResponse "Another OTP request is in progress"
// @Failure 500 {object} router.errorResponse "Failed to send OTP"
// @Router /api/send-otp [post]
func (h *HTTPEndpoint) SendOTP(r *router.Request) (any, error) {
	var req SendOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.SendOTP(r.Context(), usecase.SendOTPInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return SendOTPResponse{}, nil
}

// VerifyOTP consumes a code and returns an access token.
// @Summary Verify OTP
// @Description Checks the code against the stored one and clears it. A code can be used once.
// @Tags Identity, Authentication
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Verify OTP payload"
// @Success 200 {object} router.successResponse{data=VerifyOTPResponse} "OTP verified"
// @Failure 400 {object} router.errorResponse "Invalid OTP or OTP has expired"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/verify-otp [post]
func (h *HTTPEndpoint) VerifyOTP(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyOTP(r.Context(), usecase.VerifyOTPInput{
		Email: req.Email,
		OTP:   req.OTP,
	})
	if err != nil {
		return nil, err
	}

	return VerifyOTPResponse{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		ExpiresIn:   resp.ExpiresIn,
	}, nil
}

// GetUser returns a user record.
// @Summary Get user
// @Description Returns the user identified by email. Reading another user's record needs the users:read permission.
// @Tags Identity, Profile
// @Security BearerAuth
// @Produce json
// @Param email query string true "User email"
// @Success 200 {object} router.successResponse{data=UserResponse} "User record"
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/get-user [get]
func (h *HTTPEndpoint) GetUser(r *router.Request) (any, error) {
	resp, err := h.uc.UserDetail(r.Context(), usecase.UserDetailInput{Email: r.GetQuery("email")})
	if err != nil {
		return nil, err
	}

	return newUserResponse(resp.User), nil
}

// UploadProfilePic stores a new profile picture for the caller.
// @Summary Upload profile picture
// @Description Accepts a JPEG, PNG, WebP or GIF image and records its URL on the caller's profile.
// @Tags Identity, Profile
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param profilePic formData file true "Profile image"
// @Success 200 {object} router.successResponse{data=UploadProfilePicResponse} "Profile picture uploaded"
// @Failure 400 {object} router.errorResponse "Invalid file"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Failed to upload profile picture"
// @Router /api/upload-profile-pic [post]
func (h *HTTPEndpoint) UploadProfilePic(r *router.Request) (any, error) {
	ctx := r.Context()

	if err := r.ParseMultipart(int64(h.cfg.GetInt("modules.identity.avatar_max_bytes"))); err != nil {
		return nil, err
	}

	file, err := r.FormFile("profilePic")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close file", "error", err)
		}
	}()

	resp, err := h.uc.UploadProfilePic(ctx, usecase.UploadProfilePicInput{
		File:        file,
		Size:        file.Size,
		ContentType: file.ContentType,
	})
	if err != nil {
		return nil, err
	}

	return UploadProfilePicResponse{ProfilePicURL: resp.ProfilePicURL}, nil
}
