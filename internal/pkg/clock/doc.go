// Package clock hides time.Now behind an interface.
//
// OTP expiry and the upload timestamps are computed from a Clocker so tests
// can pin "now" with Manual and move it across the expiry boundary.
package clock
