package questsrvc

import (
	"fmt"
	"net/http"

	"github.com/questlab/backend/srvcerror"
)

const ErrCodeInvalidQuestID = "validation_error"

func ErrInvalidQuestID(id string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeInvalidQuestID,
		"quest identifier is malformed",
	).SetHttpStatusCode(http.StatusBadRequest).
		SetDebug(fmt.Errorf("quest id %q does not match %s", id, QuestIDRegex))
}

const ErrCodeQuestNotFound = "quest_not_found"

func ErrQuestNotFound(id string) *srvcerror.Error {
	return srvcerror.New(
		ErrCodeQuestNotFound,
		"quest not found",
	).SetHttpStatusCode(http.StatusNotFound).
		SetDebug(fmt.Errorf("no quest with id %q", id))
}
