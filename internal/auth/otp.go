package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rentloop/rentloop/internal/notification"
)

var (
	// ErrOTPMismatch occurs when the submitted code does not match.
	ErrOTPMismatch = errors.New("otp mismatch")

	// ErrOTPExpired occurs when no code is pending for the address.
	ErrOTPExpired = errors.New("otp expired or never sent")
)

// OTPService issues and verifies one-time email verification codes.
type OTPService struct {
	cache    *redis.Client
	notifier notification.Notifier
	ttl      time.Duration
}

// NewOTPService builds an OTP service backed by Redis.
func NewOTPService(cache *redis.Client, notifier notification.Notifier, ttl time.Duration) *OTPService {
	return &OTPService{cache: cache, notifier: notifier, ttl: ttl}
}

// Send generates a six-digit code, stores it with a TTL and delivers it.
func (s *OTPService) Send(ctx context.Context, email string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, otpKey(email), code, s.ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return s.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindOTPEmail,
		Destination: email,
		Body:        fmt.Sprintf("Your verification code is %s", code),
	})
}

// Verify checks the submitted code and consumes it on success.
func (s *OTPService) Verify(ctx context.Context, email, code string) error {
	stored, err := s.cache.Get(ctx, otpKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrOTPExpired
		}
		return fmt.Errorf("load otp: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrOTPMismatch
	}
	return s.cache.Del(ctx, otpKey(email)).Err()
}

func otpKey(email string) string {
	return "otp:" + email
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
