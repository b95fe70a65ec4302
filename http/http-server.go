package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"

	"github.com/questlab/backend/attemptsrvc"
	"github.com/questlab/backend/audit"
	"github.com/questlab/backend/auth"
	"github.com/questlab/backend/progsrvc"
	"github.com/questlab/backend/questsrvc"
	"github.com/questlab/backend/submsrvc"
)

type HttpServer struct {
	submSrvc    *submsrvc.SubmSrvc
	questSrvc   *questsrvc.QuestSrvc
	attemptSrvc *attemptsrvc.AttemptSrvc
	progSrvc    *progsrvc.ProgSrvc
	auditSink   audit.Sink
	logger      *slog.Logger
	router      *chi.Mux
}

type HttpServerParams struct {
	SubmSrvc    *submsrvc.SubmSrvc
	QuestSrvc   *questsrvc.QuestSrvc
	AttemptSrvc *attemptsrvc.AttemptSrvc
	ProgSrvc    *progsrvc.ProgSrvc
	AuditSink   audit.Sink
	JwtKey      []byte
	CorsOrigins []string
}

func NewHttpServer(p HttpServerParams) *HttpServer {
	router := chi.NewRouter()

	logger := httplog.NewLogger("questlab", httplog.Options{
		LogLevel:         slog.LevelDebug,
		Concise:          true,
		RequestHeaders:   true,
		MessageFieldName: "message",
	})

	router.Use(middleware.RequestID)
	router.Use(httplog.RequestLogger(logger))

	origins := p.CorsOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           3000,
	}))

	router.Use(auth.GetJwtAuthMiddleware(p.JwtKey))

	sink := p.AuditSink
	if sink == nil {
		sink = audit.NopSink{}
	}

	server := &HttpServer{
		submSrvc:    p.SubmSrvc,
		questSrvc:   p.QuestSrvc,
		attemptSrvc: p.AttemptSrvc,
		progSrvc:    p.ProgSrvc,
		auditSink:   sink,
		logger:      slog.Default(),
		router:      router,
	}

	router.Use(server.recoverMiddleware)
	server.routes()

	return server
}

func (httpserver *HttpServer) Start(address string) error {
	return http.ListenAndServe(address, httpserver.router)
}

// Handler exposes the router for httptest.
func (httpserver *HttpServer) Handler() http.Handler {
	return httpserver.router
}

func (httpserver *HttpServer) routes() {
	r := httpserver.router
	r.Post("/submissions", httpserver.createSubmission)
	r.Get("/quests", httpserver.listQuests)
	r.Get("/quests/{questId}", httpserver.getQuest)
	r.Get("/attempts/{questId}", httpserver.getAttempt)
	r.Get("/progress", httpserver.getProgress)
	r.Get("/health", httpserver.health)
}
