package entity

import "github.com/shandysiswandi/safestreet/internal/pkg/goerror"

var (
	ErrUserNotFound = goerror.NewBusiness("User not found", goerror.CodeNotFound)
	ErrOTPInvalid   = goerror.NewBusiness("Invalid OTP", goerror.CodeInvalidInput)
	ErrOTPExpired   = goerror.NewBusiness("OTP has expired", goerror.CodeInvalidInput)
	ErrOTPBusy      = goerror.NewBusiness("Another OTP request is in progress, try again", goerror.CodeTooManyRequest)
	ErrForbidden    = goerror.NewBusiness("Forbidden", goerror.CodeForbidden)
	ErrUnauthorized = goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
)
