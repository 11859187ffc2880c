package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"talent-ledger/internal/delivery/http/middleware"
	"talent-ledger/internal/pkg/response"
	"talent-ledger/internal/usecase"
)

// mapUsecaseError translates ledger errors into HTTP status codes. The
// mapping follows the error taxonomy: validation is 400/422, state
// conflicts are 404/409, authorization is 401/403.
func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput),
		errors.Is(err, usecase.ErrInvalidLevel),
		errors.Is(err, usecase.ErrEmptyCategory),
		errors.Is(err, usecase.ErrZeroStake),
		errors.Is(err, usecase.ErrSpecMismatch),
		errors.Is(err, usecase.ErrInvalidFeeRate):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)

	case errors.Is(err, usecase.ErrCredentialNotUsable),
		errors.Is(err, usecase.ErrSkillRequirementsNotMet):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, err.Error(), nil, err)

	case errors.Is(err, usecase.ErrPoolNotFound),
		errors.Is(err, usecase.ErrCredentialNotFound),
		errors.Is(err, usecase.ErrApplicationNotFound),
		errors.Is(err, usecase.ErrAccountNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, err.Error(), nil, err)

	case errors.Is(err, usecase.ErrPoolNotActive),
		errors.Is(err, usecase.ErrDeadlinePassed),
		errors.Is(err, usecase.ErrDuplicateApplication),
		errors.Is(err, usecase.ErrAlreadyRevoked),
		errors.Is(err, usecase.ErrInsufficientFunds):
		return middleware.NewAppError(fiber.StatusConflict, err.Error(), nil, err)

	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, response.MessageUnauthorized, nil, err)

	case errors.Is(err, usecase.ErrNotAuthorized),
		errors.Is(err, usecase.ErrSelfEndorsement):
		return middleware.NewAppError(fiber.StatusForbidden, err.Error(), nil, err)

	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
