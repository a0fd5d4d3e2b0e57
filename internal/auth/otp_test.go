package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/rentloop/rentloop/internal/notification"
)

type captureNotifier struct {
	messages []notification.Message
}

func (n *captureNotifier) Send(_ context.Context, message notification.Message) error {
	n.messages = append(n.messages, message)
	return nil
}

func newOTPFixture(t *testing.T) (*OTPService, *miniredis.Miniredis, *captureNotifier) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	notifier := &captureNotifier{}
	return NewOTPService(client, notifier, 5*time.Minute), mr, notifier
}

func sentCode(t *testing.T, mr *miniredis.Miniredis, email string) string {
	t.Helper()
	code, err := mr.Get("otp:" + email)
	if err != nil {
		t.Fatalf("read stored otp: %v", err)
	}
	return code
}

func TestSendStoresCodeAndNotifies(t *testing.T) {
	svc, mr, notifier := newOTPFixture(t)
	ctx := context.Background()

	if err := svc.Send(ctx, "ada@example.com"); err != nil {
		t.Fatalf("send: %v", err)
	}

	code := sentCode(t, mr, "ada@example.com")
	if len(code) != 6 {
		t.Fatalf("code length = %d, want 6", len(code))
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.messages))
	}
	msg := notifier.messages[0]
	if msg.Kind != notification.KindOTPEmail || msg.Destination != "ada@example.com" {
		t.Fatalf("unexpected notification: %+v", msg)
	}
	if !strings.Contains(msg.Body, code) {
		t.Fatalf("body %q does not carry the code %q", msg.Body, code)
	}
}

func TestVerifyConsumesCode(t *testing.T) {
	svc, mr, _ := newOTPFixture(t)
	ctx := context.Background()

	if err := svc.Send(ctx, "ada@example.com"); err != nil {
		t.Fatalf("send: %v", err)
	}
	code := sentCode(t, mr, "ada@example.com")

	if err := svc.Verify(ctx, "ada@example.com", code); err != nil {
		t.Fatalf("verify: %v", err)
	}
	// Codes are single use.
	if err := svc.Verify(ctx, "ada@example.com", code); !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("second verify err = %v, want ErrOTPExpired", err)
	}
}

func TestVerifyRejectsWrongCode(t *testing.T) {
	svc, mr, _ := newOTPFixture(t)
	ctx := context.Background()

	if err := svc.Send(ctx, "ada@example.com"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := svc.Verify(ctx, "ada@example.com", "000000"); !errors.Is(err, ErrOTPMismatch) {
		// One in a million chance the generated code really is 000000.
		if code := sentCode(t, mr, "ada@example.com"); code != "000000" {
			t.Fatalf("err = %v, want ErrOTPMismatch", err)
		}
	}
}

func TestVerifyAfterExpiry(t *testing.T) {
	svc, mr, _ := newOTPFixture(t)
	ctx := context.Background()

	if err := svc.Send(ctx, "ada@example.com"); err != nil {
		t.Fatalf("send: %v", err)
	}
	code := sentCode(t, mr, "ada@example.com")

	mr.FastForward(6 * time.Minute)

	if err := svc.Verify(ctx, "ada@example.com", code); !errors.Is(err, ErrOTPExpired) {
		t.Fatalf("err = %v, want ErrOTPExpired", err)
	}
}
