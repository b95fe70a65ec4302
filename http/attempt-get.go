package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/questlab/backend/auth"
	"github.com/questlab/backend/httpjson"
	"github.com/questlab/backend/questsrvc"
)

func (httpserver *HttpServer) getAttempt(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	questID := chi.URLParam(r, "questId")
	if !questsrvc.QuestIDRegex.MatchString(questID) {
		httpjson.HandleError(httpserver.logger, w, questsrvc.ErrInvalidQuestID(questID))
		return
	}

	rec, err := httpserver.attemptSrvc.Get(r.Context(), claims.UserID, questID)
	if err != nil {
		httpjson.HandleError(httpserver.logger, w, err)
		return
	}
	if rec == nil {
		httpjson.WriteSuccessJson(w, nil)
		return
	}

	httpjson.WriteSuccessJson(w, mapAttempt(rec))
}
