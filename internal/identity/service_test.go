package identity

import (
	"context"
	"errors"
	"testing"
)

type walletRecorder struct {
	provisioned []string
}

func (w *walletRecorder) Provision(_ context.Context, userID string) error {
	w.provisioned = append(w.provisioned, userID)
	return nil
}

func TestRegisterHashesPasswordAndOpensWallet(t *testing.T) {
	wallets := &walletRecorder{}
	svc := NewService(NewMemoryRepository(), wallets)

	user, err := svc.Register(context.Background(), Credentials{
		Name:     "Ada",
		Email:    "Ada@Example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != RoleCustomer {
		t.Fatalf("default role = %q, want %q", user.Role, RoleCustomer)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("email not normalised: %q", user.Email)
	}
	if string(user.PasswordHash) == "hunter22" {
		t.Fatal("password stored in clear")
	}
	if len(wallets.provisioned) != 1 || wallets.provisioned[0] != user.ID {
		t.Fatalf("wallet not provisioned for %s: %v", user.ID, wallets.provisioned)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil)

	cases := []struct {
		name  string
		creds Credentials
	}{
		{"missing name", Credentials{Email: "a@b.com", Password: "secret1"}},
		{"missing email", Credentials{Name: "Ada", Password: "secret1"}},
		{"malformed email", Credentials{Name: "Ada", Email: "not-an-email", Password: "secret1"}},
		{"short password", Credentials{Name: "Ada", Email: "a@b.com", Password: "abc"}},
		{"unknown role", Credentials{Name: "Ada", Email: "a@b.com", Password: "secret1", Role: "admin"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.creds); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil)
	creds := Credentials{Name: "Ada", Email: "ada@example.com", Password: "hunter22"}

	if _, err := svc.Register(context.Background(), creds); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), creds); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepository(), nil)
	if _, err := svc.Register(context.Background(), Credentials{
		Name: "Ada", Email: "ada@example.com", Password: "hunter22", Role: RoleOwner,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), "ADA@example.com", "hunter22")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Role != RoleOwner {
		t.Fatalf("role = %q, want %q", user.Role, RoleOwner)
	}

	if _, err := svc.Authenticate(context.Background(), "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody@example.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}
