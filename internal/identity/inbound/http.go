package inbound

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/safestreet/internal/identity/usecase"
	"github.com/shandysiswandi/safestreet/internal/pkg/config"
	"github.com/shandysiswandi/safestreet/internal/pkg/router"
)

type uc interface {
	SendOTP(ctx context.Context, in usecase.SendOTPInput) error
	VerifyOTP(ctx context.Context, in usecase.VerifyOTPInput) (*usecase.VerifyOTPOutput, error)

	UserDetail(ctx context.Context, in usecase.UserDetailInput) (*usecase.UserDetailOutput, error)
	UploadProfilePic(ctx context.Context, in usecase.UploadProfilePicInput) (*usecase.UploadProfilePicOutput, error)

	ConsumePhotoUploaded(ctx context.Context, in usecase.PhotoUploadedInput) error
}

func RegisterHTTPEndpoint(r *router.Router, cfg config.Config, uc uc) {
	end := &HTTPEndpoint{uc: uc, cfg: cfg}

	// OTP login
	r.Public(http.MethodPost, "/api/send-otp")
	r.Public(http.MethodPost, "/api/verify-otp")
	r.POST("/api/send-otp", end.SendOTP)
	r.POST("/api/verify-otp", end.VerifyOTP)

	// need authenticated
	r.GET("/api/get-user", end.GetUser)
	r.POST("/api/upload-profile-pic", end.UploadProfilePic)
}
