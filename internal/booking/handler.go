package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/rentloop/rentloop/internal/ledger"
)

// Handler exposes booking HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a booking HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type purchaseRequest struct {
	VehicleID string    `json:"vehicle_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type returnRequest struct {
	VehicleID string `json:"vehicle_id"`
}

type transactionResponse struct {
	ID       string `json:"id"`
	FromUser string `json:"from_user"`
	ToUser   string `json:"to_user"`
	Amount   int64  `json:"amount"`
	Kind     string `json:"kind"`
	Status   string `json:"status"`
}

type bookingResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	VehicleID     string    `json:"vehicle_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	TransactionID string    `json:"transaction_id"`
	Status        string    `json:"status"`
}

func toBookingResponse(b Booking) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		UserID:        b.UserID,
		VehicleID:     b.VehicleID,
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		TransactionID: b.TransactionID,
		Status:        b.Status,
	}
}

func toTransactionResponse(t ledger.Transaction) transactionResponse {
	return transactionResponse{
		ID:       t.ID,
		FromUser: t.FromUser,
		ToUser:   t.ToUser,
		Amount:   t.Amount,
		Kind:     t.Kind,
		Status:   t.Status,
	}
}

// Purchase settles a rental for the authenticated renter.
func (h *Handler) Purchase(c *fiber.Ctx) error {
	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	renterID, _ := c.Locals("user_id").(string)

	res, err := h.service.Purchase(c.UserContext(), PurchaseInput{
		RenterID:  renterID,
		VehicleID: req.VehicleID,
		Start:     req.StartDate,
		End:       req.EndDate,
	})
	if err != nil {
		return mapError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"booking":     toBookingResponse(res.Booking),
		"transaction": toTransactionResponse(res.Transaction),
	})
}

// Return hands the vehicle back and reports any penalty charged.
func (h *Handler) Return(c *fiber.Ctx) error {
	var req returnRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	renterID, _ := c.Locals("user_id").(string)

	res, err := h.service.Return(c.UserContext(), ReturnInput{
		RenterID:  renterID,
		VehicleID: req.VehicleID,
		Now:       time.Now().UTC(),
	})
	if err != nil {
		return mapError(err)
	}

	resp := fiber.Map{"booking": toBookingResponse(res.Booking)}
	if res.Penalty != nil {
		resp["penalty"] = toTransactionResponse(*res.Penalty)
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// List returns the authenticated user's bookings.
func (h *Handler) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	bookings, err := h.service.ListByUser(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, toBookingResponse(b))
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// Availability reports whether a vehicle is free over a query-string interval.
func (h *Handler) Availability(c *fiber.Ctx) error {
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid start date")
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid end date")
	}

	free, err := h.service.Availability(c.UserContext(), c.Params("vehicleId"), start, end)
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"vehicle_id": c.Params("vehicleId"), "available": free})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrVehicleNotFound), errors.Is(err, ErrBookingNotFound), errors.Is(err, ledger.ErrWalletNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrVehicleRented):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidInterval), errors.Is(err, ledger.ErrInvalidAmount):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return fiber.NewError(http.StatusBadRequest, "insufficient funds")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
