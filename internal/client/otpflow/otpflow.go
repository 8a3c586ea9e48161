// Package otpflow drives the client side of an OTP login: the countdown,
// the verify/resend gates and the hand-off to the persisted session.
package otpflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shandysiswandi/safestreet/internal/pkg/goerror"
	"go.uber.org/atomic"
)

// Window is how long a code can be submitted after it was sent.
const Window = 60

var (
	ErrVerifyClosed     = errors.New("otpflow: verification window is closed, request a new code")
	ErrResendNotAllowed = errors.New("otpflow: resend is available once the countdown ends")
	ErrResendInProgress = errors.New("otpflow: resend already in progress")
	ErrNotAwaiting      = errors.New("otpflow: session is not awaiting a code")
	ErrSessionNotSaved  = errors.New("otpflow: code accepted but the session was not saved, request a new code")
)

type State int

const (
	StateIdle State = iota
	StateAwaitingInput
	StateSubmitting
	StateVerified
)

func (s State) String() string {
	switch s {
	case StateAwaitingInput:
		return "awaiting_input"
	case StateSubmitting:
		return "submitting"
	case StateVerified:
		return "verified"
	default:
		return "idle"
	}
}

// Ticker is the subset of *time.Ticker the session needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewTickerFunc builds a Ticker firing every d.
type NewTickerFunc func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// RealTicker is the wall-clock NewTickerFunc.
func RealTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Backend talks to the authentication server.
type Backend interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (token string, err error)
}

// Target identifies who is logging in.
type Target struct {
	Email  string
	Mobile string
}

type Options struct {
	Backend    Backend
	NewTicker  NewTickerFunc
	// OnVerified runs after a successful verify, before Submit returns.
	OnVerified func(ctx context.Context, t Target, token string) error
	// OnTick reports the remaining seconds whenever the countdown moves.
	OnTick     func(remaining int)
}

// Session is one OTP attempt for a Target. It is safe for concurrent use.
type Session struct {
	opts     Options
	resend   *atomic.Bool
	mu       sync.Mutex
	target   Target
	state    State
	remain   int
	code     string
	ticker   Ticker
	stopTick chan struct{}
}

func New(opts Options) *Session {
	if opts.NewTicker == nil {
		opts.NewTicker = RealTicker
	}
	return &Session{opts: opts, resend: atomic.NewBool(false)}
}

// Start enters AwaitingInput for t with a full window. The code must have
// been sent already.
func (s *Session) Start(t Target) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.target = t
	s.state = StateAwaitingInput
	s.remain = Window
	s.code = ""
	s.startLocked()
}

func (s *Session) startLocked() {
	s.ticker = s.opts.NewTicker(time.Second)
	s.stopTick = make(chan struct{})
	go s.run(s.ticker, s.stopTick)
}

func (s *Session) stopLocked() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.stopTick)
	s.ticker = nil
	s.stopTick = nil
}

func (s *Session) run(t Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-t.C():
			s.mu.Lock()
			if s.stopTick != stop {
				s.mu.Unlock()
				return
			}
			if s.remain == 0 {
				s.mu.Unlock()
				continue
			}
			s.remain--
			remain := s.remain
			s.mu.Unlock()

			if s.opts.OnTick != nil {
				s.opts.OnTick(remain)
			}
		}
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remain
}

// Code is the last submitted code. Resend and Leave clear it.
func (s *Session) Code() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

func (s *Session) Target() Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// Expired reports an awaiting session whose countdown reached zero.
func (s *Session) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateAwaitingInput && s.remain == 0
}

func (s *Session) CanVerify() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateAwaitingInput && s.remain > 0
}

func (s *Session) CanResend() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateAwaitingInput && s.remain == 0 && !s.resend.Load()
}

// Submit verifies code against the server. When the server rejects the code
// the session stays in AwaitingInput and the countdown keeps running.
//
// The server consumes an accepted code, so if OnVerified then fails the code
// cannot be submitted again: Submit returns ErrSessionNotSaved and closes the
// window, leaving Resend as the only way forward.
func (s *Session) Submit(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return goerror.NewInvalidInput(nil, "otp", "OTP is required")
	}

	s.mu.Lock()
	if s.state != StateAwaitingInput {
		s.mu.Unlock()
		return ErrNotAwaiting
	}
	if s.remain == 0 {
		s.mu.Unlock()
		return ErrVerifyClosed
	}
	s.state = StateSubmitting
	s.code = code
	target := s.target
	s.mu.Unlock()

	consumed := false
	token, err := s.opts.Backend.VerifyOTP(ctx, target.Email, code)
	if err == nil && s.opts.OnVerified != nil {
		if herr := s.opts.OnVerified(ctx, target, token); herr != nil {
			consumed = true
			err = fmt.Errorf("%w: %w", ErrSessionNotSaved, herr)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSubmitting {
		// Left while the request was in flight.
		return ErrNotAwaiting
	}
	if err != nil {
		s.state = StateAwaitingInput
		if consumed {
			s.remain = 0
		}
		return err
	}

	s.state = StateVerified
	s.stopLocked()
	return nil
}

// Resend requests a new code once the countdown is over.
func (s *Session) Resend(ctx context.Context) error {
	if !s.resend.CompareAndSwap(false, true) {
		return ErrResendInProgress
	}
	defer s.resend.Store(false)

	s.mu.Lock()
	if s.state != StateAwaitingInput {
		s.mu.Unlock()
		return ErrNotAwaiting
	}
	if s.remain > 0 {
		s.mu.Unlock()
		return ErrResendNotAllowed
	}
	email := s.target.Email
	s.mu.Unlock()

	if err := s.opts.Backend.SendOTP(ctx, email); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingInput {
		return ErrNotAwaiting
	}
	s.remain = Window
	s.code = ""
	return nil
}

// Leave stops the countdown and drops the session. It is idempotent.
func (s *Session) Leave() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.target = Target{}
	s.state = StateIdle
	s.remain = 0
	s.code = ""
}
