package submsrvc

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/questlab/backend/srvcerror"
)

const ErrCodeValidation = "validation_error"

func ErrCodeEmpty() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeValidation,
		"Submitted code must not be empty",
	).SetHttpStatusCode(http.StatusBadRequest)
}

func ErrCodeTooLarge(maxChars int) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeValidation,
		fmt.Sprintf("Submitted code exceeds the maximum size of %d characters", maxChars),
	).SetHttpStatusCode(http.StatusBadRequest)
}

const ErrCodeAdmissionDenied = "admission_denied"

func ErrAdmissionDenied(retryAfterSeconds int) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeAdmissionDenied,
		fmt.Sprintf("Submission rate limit exceeded, retry in %d seconds", retryAfterSeconds),
	).SetHttpStatusCode(http.StatusTooManyRequests).
		SetHttpHeader("Retry-After", strconv.Itoa(retryAfterSeconds))
}

const ErrCodeSandboxTimeout = "sandbox_timeout"

// ErrSandboxTimeout covers the orchestration deadline expiring before a
// graded result could be produced. A quest-level timeout inside the
// sandbox is not an error; it grades as a failed execution.
func ErrSandboxTimeout() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeSandboxTimeout,
		"Submission processing exceeded the allowed time",
	).SetHttpStatusCode(http.StatusGatewayTimeout)
}
