package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/otpworks/otp-backend/internal/models"
)

func TestReportVerification(t *testing.T) {
	cases := []struct {
		err  error
		want VerificationResult
	}{
		{nil, ResultVerified},
		{models.ErrInvalidCode, ResultInvalidCode},
		{models.ErrExpired, ResultExpired},
		{models.ErrAlreadyUsed, ResultAlreadyUsed},
		{models.ErrUnknownClient, ResultUnknownClient},
		{fmt.Errorf("context: %w", models.ErrExpired), ResultExpired},
		{errors.New("connection reset"), ResultInternalError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ReportVerification(tc.err), "err=%v", tc.err)
	}
}
