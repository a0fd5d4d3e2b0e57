package vehicle

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestAddListsVehicleAsAvailable(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ownerID := uuid.NewString()

	v, err := svc.Add(context.Background(), AddInput{
		OwnerID:   ownerID,
		Model:     "Toyota Corolla",
		Location:  "Brazzaville",
		DailyRate: 2500,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if v.Status != StatusAvailable || !v.Available {
		t.Fatalf("new vehicle not available: status=%q available=%v", v.Status, v.Available)
	}

	got, err := svc.Get(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Model != "Toyota Corolla" || got.OwnerID != ownerID {
		t.Fatalf("stored vehicle mismatch: %+v", got)
	}
}

func TestAddRejectsBadInput(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ownerID := uuid.NewString()

	cases := []struct {
		name  string
		input AddInput
	}{
		{"bad owner id", AddInput{OwnerID: "nope", Model: "Corolla", DailyRate: 100}},
		{"missing model", AddInput{OwnerID: ownerID, DailyRate: 100}},
		{"zero rate", AddInput{OwnerID: ownerID, Model: "Corolla"}},
		{"negative rate", AddInput{OwnerID: ownerID, Model: "Corolla", DailyRate: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Add(context.Background(), tc.input); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDeleteRequiresOwner(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ownerID := uuid.NewString()

	v, err := svc.Add(context.Background(), AddInput{OwnerID: ownerID, Model: "Corolla", DailyRate: 100})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := svc.Delete(context.Background(), v.ID, uuid.NewString()); err == nil {
		t.Fatal("stranger deleted the listing")
	}
	if err := svc.Delete(context.Background(), v.ID, ownerID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), v.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete err = %v, want ErrNotFound", err)
	}
}

func TestAttachImage(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ownerID := uuid.NewString()

	v, err := svc.Add(context.Background(), AddInput{OwnerID: ownerID, Model: "Corolla", DailyRate: 100})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := svc.AttachImage(context.Background(), v.ID, ""); err == nil {
		t.Fatal("empty payload accepted")
	}
	if _, err := svc.AttachImage(context.Background(), uuid.NewString(), "aGVsbG8="); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown vehicle err = %v, want ErrNotFound", err)
	}

	img, err := svc.AttachImage(context.Background(), v.ID, "aGVsbG8=")
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	got, err := svc.Get(context.Background(), v.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Images) != 1 || got.Images[0].ID != img.ID {
		t.Fatalf("images = %+v, want the attached one", got.Images)
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{StatusAvailable, StatusRented, true},
		{StatusRented, StatusAvailable, true},
		{StatusAvailable, StatusAvailable, false},
		{StatusRented, StatusRented, false},
		{StatusAvailable, "scrapped", false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.ok {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}
