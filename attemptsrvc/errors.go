package attemptsrvc

import (
	"net/http"

	"github.com/questlab/backend/srvcerror"
)

const ErrCodeLedgerUnavailable = "ledger_unavailable"

func ErrLedgerUnavailable() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeLedgerUnavailable,
		"attempt storage is unavailable",
	).SetHttpStatusCode(http.StatusInternalServerError)
}
