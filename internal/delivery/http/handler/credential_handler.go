package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"talent-ledger/internal/delivery/http/dto"
	"talent-ledger/internal/delivery/http/middleware"
	"talent-ledger/internal/pkg/response"
	"talent-ledger/internal/usecase"
)

type CredentialHandler struct {
	uc usecase.CredentialUsecase
}

func NewCredentialHandler(uc usecase.CredentialUsecase) *CredentialHandler {
	return &CredentialHandler{uc: uc}
}

func (h *CredentialHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/", h.Mint)
	r.Get("/:id", h.Get)
	r.Put("/:id/level", h.UpdateLevel)
	r.Delete("/:id", h.Revoke)
	r.Post("/:id/endorsements", h.Endorse)
	r.Get("/holder/:holder", h.ListByHolder)
}

func (h *CredentialHandler) Mint(c fiber.Ctx) error {
	var req dto.MintCredentialRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	cred, err := h.uc.Mint(c.Context(), middleware.AccountIDFromCtx(c), usecase.MintInput{
		Holder:      req.Holder,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Level:       req.Level,
		ExpiresAt:   req.ExpiresAt,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return mapUsecaseError(err)
	}

	return response.Success(c, fiber.StatusCreated, response.MessageOK, dto.FromCredential(cred))
}

func (h *CredentialHandler) Get(c fiber.Ctx) error {
	id, ok := credentialIDFromParams(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid credential id", nil, nil)
	}

	cred, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromCredential(cred))
}

func (h *CredentialHandler) UpdateLevel(c fiber.Ctx) error {
	id, ok := credentialIDFromParams(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid credential id", nil, nil)
	}

	var req dto.UpdateLevelRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.uc.UpdateLevel(c.Context(), middleware.AccountIDFromCtx(c), id, req.Level, req.Evidence); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *CredentialHandler) Revoke(c fiber.Ctx) error {
	id, ok := credentialIDFromParams(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid credential id", nil, nil)
	}

	var req dto.RevokeCredentialRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.uc.Revoke(c.Context(), middleware.AccountIDFromCtx(c), id, req.Reason); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

func (h *CredentialHandler) Endorse(c fiber.Ctx) error {
	id, ok := credentialIDFromParams(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid credential id", nil, nil)
	}

	var req dto.EndorseCredentialRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.uc.Endorse(c.Context(), middleware.AccountIDFromCtx(c), id, req.Data); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, nil)
}

func (h *CredentialHandler) ListByHolder(c fiber.Ctx) error {
	holder, err := uuid.Parse(c.Params("holder"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid holder id", nil, err)
	}

	creds, err := h.uc.ListByHolder(c.Context(), holder)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromCredentials(creds))
}

func credentialIDFromParams(c fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
