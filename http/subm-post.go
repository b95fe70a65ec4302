package http

import (
	"encoding/json"
	"net/http"

	"github.com/questlab/backend/auth"
	"github.com/questlab/backend/httpjson"
)

func (httpserver *HttpServer) createSubmission(w http.ResponseWriter, r *http.Request) {
	type createSubmissionRequest struct {
		Code    string `json:"code"`
		QuestID string `json:"quest_id"`
	}

	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var request createSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	res, err := httpserver.submSrvc.Submit(r.Context(), submitParams(r, claims, request.QuestID, request.Code))
	if err != nil {
		httpjson.HandleError(httpserver.logger, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, mapSubmission(res))
}
