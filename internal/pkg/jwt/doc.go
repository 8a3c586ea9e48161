// Package jwt issues and verifies the bearer tokens handed out after a
// successful OTP verification, and carries verified claims through a
// request context.
package jwt
