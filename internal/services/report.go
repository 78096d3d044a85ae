package services

import (
	"errors"

	"github.com/otpworks/otp-backend/internal/models"
)

// VerificationResult is the closed taxonomy of verification outcomes
// exposed to the boundary layer.
type VerificationResult string

const (
	ResultVerified      VerificationResult = "verified"
	ResultInvalidCode   VerificationResult = "invalid_code"
	ResultExpired       VerificationResult = "expired"
	ResultAlreadyUsed   VerificationResult = "already_used"
	ResultUnknownClient VerificationResult = "unknown_client"
	ResultInternalError VerificationResult = "internal_error"
)

// ReportVerification translates an engine outcome into the result taxonomy.
// Pure translation; unmapped errors become ResultInternalError so that no
// storage or network detail crosses the boundary.
func ReportVerification(err error) VerificationResult {
	switch {
	case err == nil:
		return ResultVerified
	case errors.Is(err, models.ErrInvalidCode):
		return ResultInvalidCode
	case errors.Is(err, models.ErrExpired):
		return ResultExpired
	case errors.Is(err, models.ErrAlreadyUsed):
		return ResultAlreadyUsed
	case errors.Is(err, models.ErrUnknownClient):
		return ResultUnknownClient
	default:
		return ResultInternalError
	}
}
