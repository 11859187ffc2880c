package usecase

import "errors"

// Caller-facing errors, grouped by how the caller should react.
//
// Validation errors mean the input itself is wrong; retry with a
// corrected request. State-conflict errors mean the entity moved on;
// re-read before retrying. Authorization errors are never retryable by
// the same caller. ErrInternal covers storage faults and invariant
// breaches; the operation had no observable effect.
var (
	// validation
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidLevel        = errors.New("credential level out of range")
	ErrEmptyCategory       = errors.New("credential category is empty")
	ErrZeroStake           = errors.New("pool stake must be positive")
	ErrSpecMismatch        = errors.New("skill requirements malformed")
	ErrInvalidFeeRate      = errors.New("fee rate out of bounds")
	ErrCredentialNotUsable = errors.New("offered credential not owned or not active")

	// state conflict
	ErrPoolNotFound         = errors.New("pool not found")
	ErrPoolNotActive        = errors.New("pool not active")
	ErrDeadlinePassed       = errors.New("pool deadline passed")
	ErrDuplicateApplication = errors.New("application already exists for candidate")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrCredentialNotFound   = errors.New("credential not found")
	ErrAlreadyRevoked       = errors.New("credential already revoked")
	ErrAccountNotFound      = errors.New("account not found")
	ErrInsufficientFunds    = errors.New("insufficient balance")

	// authorization
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotAuthorized   = errors.New("caller not permitted")
	ErrSelfEndorsement = errors.New("holder cannot endorse own credential")

	// eligibility
	ErrSkillRequirementsNotMet = errors.New("skill requirements not met")

	// fatal
	ErrInternal = errors.New("internal error")
)
