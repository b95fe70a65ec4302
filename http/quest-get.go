package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/questlab/backend/auth"
	"github.com/questlab/backend/httpjson"
)

func (httpserver *HttpServer) listQuests(w http.ResponseWriter, r *http.Request) {
	quests := httpserver.questSrvc.List()
	views := make([]questView, len(quests))
	for i, q := range quests {
		views[i] = mapQuest(q, 0)
	}
	httpjson.WriteSuccessJson(w, views)
}

func (httpserver *HttpServer) getQuest(w http.ResponseWriter, r *http.Request) {
	questID := chi.URLParam(r, "questId")

	quest, err := httpserver.questSrvc.Get(questID)
	if err != nil {
		httpjson.HandleError(httpserver.logger, w, err)
		return
	}

	// hints are gated by the caller's unlocked tier; anonymous callers
	// see none
	unlockedTier := 0
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		rec, err := httpserver.attemptSrvc.Get(r.Context(), claims.UserID, questID)
		if err != nil {
			httpjson.HandleError(httpserver.logger, w, err)
			return
		}
		if rec != nil {
			unlockedTier = rec.HintTierUnlocked
		}
	}

	httpjson.WriteSuccessJson(w, mapQuest(quest, unlockedTier))
}
