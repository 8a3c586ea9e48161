package usecase

import (
	"crypto/rand"
	"io"
	"math/big"
	"strconv"
	"time"
)

const (
	otpMin = 100000
	otpMax = 999999
	otpTTL = 600 * time.Second
)

var otpSpan = big.NewInt(otpMax - otpMin + 1)

// generateOTP draws a code uniformly from [100000, 999999].
func generateOTP(r io.Reader) (string, error) {
	n, err := rand.Int(r, otpSpan)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}
