package vehicle

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes vehicle HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a vehicle HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type addRequest struct {
	Model     string `json:"model"`
	Location  string `json:"location"`
	DailyRate int64  `json:"daily_rate"`
}

type imageRequest struct {
	EncodedImage string `json:"encoded_image"`
}

type imageResponse struct {
	ID           string `json:"id"`
	VehicleID    string `json:"vehicle_id"`
	EncodedImage string `json:"encoded_image"`
}

type vehicleResponse struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Model     string          `json:"model"`
	Location  string          `json:"location"`
	DailyRate int64           `json:"daily_rate"`
	Status    string          `json:"status"`
	Available bool            `json:"available"`
	Images    []imageResponse `json:"images"`
}

func toResponse(v Vehicle) vehicleResponse {
	resp := vehicleResponse{
		ID:        v.ID,
		OwnerID:   v.OwnerID,
		Model:     v.Model,
		Location:  v.Location,
		DailyRate: v.DailyRate,
		Status:    v.Status,
		Available: v.Available,
		Images:    []imageResponse{},
	}
	for _, img := range v.Images {
		resp.Images = append(resp.Images, imageResponse{ID: img.ID, VehicleID: img.VehicleID, EncodedImage: img.EncodedImage})
	}
	return resp
}

// Add lists a vehicle owned by the authenticated user.
func (h *Handler) Add(c *fiber.Ctx) error {
	var req addRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	ownerID, _ := c.Locals("user_id").(string)
	v, err := h.service.Add(c.UserContext(), AddInput{
		OwnerID:   ownerID,
		Model:     req.Model,
		Location:  req.Location,
		DailyRate: req.DailyRate,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(toResponse(v))
}

// List returns every vehicle.
func (h *Handler) List(c *fiber.Ctx) error {
	return h.list(c, false)
}

// ListAvailable returns only bookable vehicles.
func (h *Handler) ListAvailable(c *fiber.Ctx) error {
	return h.list(c, true)
}

func (h *Handler) list(c *fiber.Ctx, onlyAvailable bool) error {
	vehicles, err := h.service.List(c.UserContext(), onlyAvailable)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]vehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		resp = append(resp, toResponse(v))
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// Get returns one vehicle by identifier.
func (h *Handler) Get(c *fiber.Ctx) error {
	v, err := h.service.Get(c.UserContext(), c.Params("vehicleId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "vehicle not found")
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(toResponse(v))
}

// Delete removes the authenticated owner's listing.
func (h *Handler) Delete(c *fiber.Ctx) error {
	requestorID, _ := c.Locals("user_id").(string)
	if err := h.service.Delete(c.UserContext(), c.Params("vehicleId"), requestorID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "vehicle not found")
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "deleted"})
}

// AttachImage stores a photo for a listing.
func (h *Handler) AttachImage(c *fiber.Ctx) error {
	var req imageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	img, err := h.service.AttachImage(c.UserContext(), c.Params("vehicleId"), req.EncodedImage)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "vehicle not found")
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(imageResponse{ID: img.ID, VehicleID: img.VehicleID, EncodedImage: img.EncodedImage})
}
