package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/questlab/backend/audit"
	"github.com/questlab/backend/httpjson"
	"github.com/questlab/backend/srvcerror"
)

// recoverMiddleware is the outermost failure boundary: a panic anywhere
// in the pipeline becomes an audit event plus a generic internal error.
// Stack traces and panic values never reach the response body.
func (httpserver *HttpServer) recoverMiddleware(next http.Handler) http.Handler {
	hfn := func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				httpserver.auditSink.Record(r.Context(), audit.Event{
					Timestamp: time.Now(),
					Level:     audit.LevelError,
					Event:     "unhandled_failure",
					RequestID: middleware.GetReqID(r.Context()),
					ErrorCode: srvcerror.ErrCodeUnhandled,
					Fields: map[string]any{
						"method": r.Method,
						"path":   r.URL.Path,
						"panic":  fmt.Sprintf("%v", rec),
					},
				})
				httpjson.HandleError(httpserver.logger, w, srvcerror.ErrUnhandled())
			}
		}()
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(hfn)
}
