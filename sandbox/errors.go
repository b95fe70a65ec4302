package sandbox

import (
	"net/http"

	"github.com/questlab/backend/srvcerror"
)

const ErrCodeTransportFault = "transport_fault"

// ErrTransportFault means the execution backend itself is unreachable,
// e.g. the language runtime binary is missing. Distinct from a timeout.
func ErrTransportFault() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeTransportFault,
		"execution backend unavailable",
	).SetHttpStatusCode(http.StatusServiceUnavailable)
}

const ErrCodeSandboxFault = "sandbox_fault"

func ErrSandboxFault() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeSandboxFault,
		"sandbox failed to run the submission",
	).SetHttpStatusCode(http.StatusInternalServerError)
}
