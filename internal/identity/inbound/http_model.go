package inbound

import (
	"time"

	"github.com/shandysiswandi/safestreet/internal/identity/entity"
)

type SendOTPRequest struct {
	Email string `json:"email" example:"damerasanthosh2005@gmail.com"`
}

type SendOTPResponse struct{}

func (SendOTPResponse) Message() string { return "OTP sent successfully" }
func (SendOTPResponse) Data() any       { return nil }

type VerifyOTPRequest struct {
	Email string `json:"email" example:"damerasanthosh2005@gmail.com"`
	OTP   string `json:"otp" example:"482913"`
}

type VerifyOTPResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"Bearer"`
	ExpiresIn   int64  `json:"expires_in" example:"86400"`
}

func (VerifyOTPResponse) Message() string { return "OTP verified successfully" }

type UserResponse struct {
	Email         string    `json:"email"`
	Mobile        string    `json:"mobile"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
	TotalUploads  int       `json:"total_uploads"`
	ProfilePicURL string    `json:"profile_pic_url,omitempty"`
}

func (UserResponse) Message() string { return "User fetched successfully" }

func newUserResponse(u entity.User) UserResponse {
	return UserResponse{
		Email:         u.Email,
		Mobile:        u.Mobile,
		Name:          u.Name,
		Role:          u.Role.String(),
		CreatedAt:     u.CreatedAt,
		TotalUploads:  u.TotalUploads,
		ProfilePicURL: u.ProfilePicURL,
	}
}

type UploadProfilePicResponse struct {
	ProfilePicURL string `json:"profile_pic_url"`
}

func (UploadProfilePicResponse) Message() string { return "Profile picture uploaded" }
