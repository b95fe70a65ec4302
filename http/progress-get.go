package http

import (
	"net/http"

	"github.com/questlab/backend/auth"
	"github.com/questlab/backend/httpjson"
	"github.com/questlab/backend/progsrvc"
)

func (httpserver *HttpServer) getProgress(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	state, err := httpserver.progSrvc.GetState(r.Context(), claims.UserID)
	if err != nil {
		httpjson.HandleError(httpserver.logger, w, err)
		return
	}

	stored, err := httpserver.progSrvc.GetWorlds(r.Context(), claims.UserID)
	if err != nil {
		httpjson.HandleError(httpserver.logger, w, err)
		return
	}

	catalog := make([]progsrvc.WorldInfo, 0)
	for _, worldID := range httpserver.questSrvc.Worlds() {
		catalog = append(catalog, progsrvc.WorldInfo{
			WorldID:     worldID,
			TotalQuests: httpserver.questSrvc.WorldTotalQuests(worldID),
		})
	}

	httpjson.WriteSuccessJson(w, progressView{
		Xp:            state.Xp,
		Level:         state.Level,
		XpForNext:     progsrvc.XpForLevel(state.Level + 1),
		CurrentStreak: state.CurrentStreak,
		LongestStreak: state.LongestStreak,
		LastLoginDate: state.LastLoginDate,
		Worlds:        progsrvc.MergeWorldProgress(claims.UserID, catalog, stored),
	})
}
