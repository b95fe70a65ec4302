package http

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/questlab/backend/auth"
	"github.com/questlab/backend/submsrvc"
)

func submitParams(r *http.Request, claims *auth.JwtClaims, questID, code string) submsrvc.SubmitParams {
	return submsrvc.SubmitParams{
		UserID:     claims.UserID,
		QuestID:    questID,
		Code:       code,
		RemoteAddr: clientIP(r),
		RequestID:  middleware.GetReqID(r.Context()),
	}
}

// clientIP strips the port so one user's requests rate-limit together
// regardless of the ephemeral source port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
