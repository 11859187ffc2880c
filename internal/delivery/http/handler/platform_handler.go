package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"talent-ledger/internal/delivery/http/dto"
	"talent-ledger/internal/delivery/http/middleware"
	"talent-ledger/internal/pkg/response"
	"talent-ledger/internal/usecase"
)

type PlatformHandler struct {
	uc usecase.PlatformUsecase
}

func NewPlatformHandler(uc usecase.PlatformUsecase) *PlatformHandler {
	return &PlatformHandler{uc: uc}
}

func (h *PlatformHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/fee-rate", h.FeeRate)
	r.Put("/fee-rate", h.SetFeeRate)
	r.Post("/deposits", h.Deposit)
	r.Put("/roles", h.SetRole)
	r.Get("/accounts/:id/balance", h.Balance)
	r.Get("/events", h.RecentEvents)
}

func (h *PlatformHandler) FeeRate(c fiber.Ctx) error {
	rate, err := h.uc.FeeRate(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, map[string]any{"rate_bp": rate})
}

func (h *PlatformHandler) SetFeeRate(c fiber.Ctx) error {
	var req dto.SetFeeRateRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.uc.SetFeeRate(c.Context(), middleware.AccountIDFromCtx(c), req.RateBP); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *PlatformHandler) Deposit(c fiber.Ctx) error {
	var req dto.DepositRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.uc.Deposit(c.Context(), middleware.AccountIDFromCtx(c), req.Account, req.Amount); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *PlatformHandler) SetRole(c fiber.Ctx) error {
	var req dto.SetRoleRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.uc.SetRole(c.Context(), middleware.AccountIDFromCtx(c), req.Account, req.Role); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *PlatformHandler) Balance(c fiber.Ctx) error {
	account, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid account id", nil, err)
	}

	balance, err := h.uc.Balance(c.Context(), middleware.AccountIDFromCtx(c), account)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, map[string]any{"balance": balance})
}

func (h *PlatformHandler) RecentEvents(c fiber.Ctx) error {
	limit := fiber.Query(c, "limit", 0)

	events, err := h.uc.RecentEvents(c.Context(), limit)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromEvents(events))
}
