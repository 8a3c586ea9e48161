// Package mail sends email. The OTP delivery gateway sits on top of the
// Mail interface; SMTP is the only transport.
package mail
