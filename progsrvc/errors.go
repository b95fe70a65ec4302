package progsrvc

import (
	"errors"
	"net/http"

	"github.com/questlab/backend/srvcerror"
)

// ErrConflict signals that a conditional write lost against a concurrent
// writer. Callers re-read and retry.
var ErrConflict = errors.New("progression state changed concurrently")

const ErrCodeProgressionUnavailable = "progression_unavailable"

func ErrProgressionUnavailable() *srvcerror.Error {
	return srvcerror.New(
		ErrCodeProgressionUnavailable,
		"Progression state is temporarily unavailable",
	).SetHttpStatusCode(http.StatusInternalServerError)
}

const ErrCodePersistenceConflict = "persistence_conflict"

func ErrPersistenceConflict() *srvcerror.Error {
	return srvcerror.New(
		ErrCodePersistenceConflict,
		"Progression update conflicted with a concurrent request, please retry",
	).SetHttpStatusCode(http.StatusConflict)
}
