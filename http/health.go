package http

import (
	"net/http"

	"github.com/questlab/backend/httpjson"
)

func (httpserver *HttpServer) health(w http.ResponseWriter, r *http.Request) {
	httpjson.WriteSuccessJson(w, map[string]any{
		"healthy": true,
		"quests":  len(httpserver.questSrvc.List()),
	})
}
