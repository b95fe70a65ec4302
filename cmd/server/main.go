package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/questlab/backend/attemptsrvc"
	"github.com/questlab/backend/audit"
	"github.com/questlab/backend/conf"
	"github.com/questlab/backend/http"
	"github.com/questlab/backend/progsrvc"
	"github.com/questlab/backend/questsrvc"
	"github.com/questlab/backend/ratelimit"
	"github.com/questlab/backend/s3bucket"
	"github.com/questlab/backend/sandbox"
	"github.com/questlab/backend/submsrvc"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	jwtKey := os.Getenv("JWT_KEY")
	if jwtKey == "" {
		slog.Error("JWT_KEY is not set")
		os.Exit(1)
	}

	questDir := conf.GetEnvOrDefault("QUEST_DIR", "./quests")
	questSrvc, err := questsrvc.NewQuestSrvc(questDir)
	if err != nil {
		slog.Error("failed to load quest catalog", "error", err, "dir", questDir)
		os.Exit(1)
	}

	ctx := context.Background()
	awsCfg, err := conf.LoadAwsConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	ddbClient := conf.NewDynamoDbClient(awsCfg)
	attemptRepo := attemptsrvc.NewDdbAttemptRepo(ddbClient,
		conf.GetEnvOrDefault("ATTEMPTS_TABLE", "questlab_attempts"))
	progressRepo := progsrvc.NewDdbProgressRepo(ddbClient,
		conf.GetEnvOrDefault("PROGRESSION_TABLE", "questlab_progression"),
		conf.GetEnvOrDefault("WORLD_PROGRESS_TABLE", "questlab_world_progress"))

	var archive *attemptsrvc.ResultArchive
	if bucketName := os.Getenv("RESULTS_S3_BUCKET"); bucketName != "" {
		bucket := s3bucket.NewS3BucketFromClient(conf.NewS3Client(awsCfg), awsCfg.Region, bucketName)
		archive = attemptsrvc.NewResultArchive(slog.Default(), bucket)
	}

	var auditSink audit.Sink = audit.NewSlogSink(slog.Default())
	if queueUrl := os.Getenv("AUDIT_SQS_QUEUE_URL"); queueUrl != "" {
		auditSink = audit.MultiSink{
			audit.NewSlogSink(slog.Default()),
			audit.NewSqsSink(conf.NewSqsClient(awsCfg), queueUrl),
		}
	}

	limiter := ratelimit.NewLimiter(envInt("SUBMIT_RATE_LIMIT", ratelimit.DefaultLimit),
		time.Duration(envInt("SUBMIT_RATE_WINDOW_SECONDS", 60))*time.Second)
	defer limiter.Close()

	registry := sandbox.NewRegistry(
		sandbox.NewPythonExecutor(),
		sandbox.NewNodeExecutor(),
	)

	attemptSrvc := attemptsrvc.NewAttemptSrvc(slog.Default(), attemptRepo, archive)
	progSrvc := progsrvc.NewProgSrvc(progressRepo)

	submSrvc := submsrvc.NewSubmSrvc(submsrvc.SubmSrvcParams{
		QuestSrvc:    questSrvc,
		Registry:     registry,
		AttemptSrvc:  attemptSrvc,
		ProgSrvc:     progSrvc,
		Limiter:      limiter,
		AuditSink:    auditSink,
		MaxCodeChars: envInt("MAX_CODE_CHARS", submsrvc.DefaultMaxCodeChars),
	})

	httpServer := http.NewHttpServer(http.HttpServerParams{
		SubmSrvc:    submSrvc,
		QuestSrvc:   questSrvc,
		AttemptSrvc: attemptSrvc,
		ProgSrvc:    progSrvc,
		AuditSink:   auditSink,
		JwtKey:      []byte(jwtKey),
		CorsOrigins: corsOrigins(),
	})

	address := conf.GetEnvOrDefault("LISTEN_ADDRESS", ":8080")
	log.Printf("Starting server on %s", address)
	err = httpServer.Start(address)
	log.Printf("Server stopped with error: %v", err)
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Error("invalid integer env var", "key", key, "value", v)
		os.Exit(1)
	}
	return n
}

func corsOrigins() []string {
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		return []string{v}
	}
	return nil
}
