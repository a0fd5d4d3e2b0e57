package vehicle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Service exposes vehicle listing operations.
type Service struct {
	repo Repository
}

// NewService builds a vehicle service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AddInput captures data required to list a vehicle.
type AddInput struct {
	OwnerID   string
	Model     string
	Location  string
	DailyRate int64
}

// Add lists a new vehicle as available.
func (s *Service) Add(ctx context.Context, input AddInput) (Vehicle, error) {
	if _, err := uuid.Parse(input.OwnerID); err != nil {
		return Vehicle{}, err
	}
	if input.Model == "" {
		return Vehicle{}, errors.New("model is required")
	}
	if input.DailyRate <= 0 {
		return Vehicle{}, errors.New("daily rate must be positive")
	}

	v := Vehicle{
		ID:        uuid.NewString(),
		OwnerID:   input.OwnerID,
		Model:     input.Model,
		Location:  input.Location,
		DailyRate: input.DailyRate,
		Status:    StatusAvailable,
		Available: true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return Vehicle{}, err
	}
	return v, nil
}

// Get retrieves one vehicle with its images.
func (s *Service) Get(ctx context.Context, id string) (Vehicle, error) {
	return s.repo.Get(ctx, id)
}

// List returns all vehicles; onlyAvailable restricts to bookable ones.
func (s *Service) List(ctx context.Context, onlyAvailable bool) ([]Vehicle, error) {
	return s.repo.List(ctx, onlyAvailable)
}

// Delete removes a listing. Only the owner may delete it.
func (s *Service) Delete(ctx context.Context, id, requestorID string) error {
	v, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if v.OwnerID != requestorID {
		return errors.New("not owner of vehicle")
	}
	return s.repo.Delete(ctx, id)
}

// AttachImage stores a base64-encoded photo on a listing.
func (s *Service) AttachImage(ctx context.Context, vehicleID, encoded string) (Image, error) {
	if encoded == "" {
		return Image{}, errors.New("encoded image is required")
	}
	if _, err := s.repo.Get(ctx, vehicleID); err != nil {
		return Image{}, err
	}
	img := Image{
		ID:           uuid.NewString(),
		VehicleID:    vehicleID,
		EncodedImage: encoded,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.AttachImage(ctx, img); err != nil {
		return Image{}, err
	}
	return img, nil
}
