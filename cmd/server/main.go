package main

import (
	"context"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	httpadapter "jobboard/internal/adapter/http"
	repo "jobboard/internal/adapter/repository"
	"jobboard/internal/adapter/redisstore"
	"jobboard/internal/config"
	"jobboard/internal/infrastructure/mail"
	"jobboard/internal/infrastructure/migration"
	"jobboard/internal/infrastructure/storage"
	"jobboard/internal/usecase"
	infra "jobboard/pkg/infrastructure"
	"jobboard/pkg/token"
)

func main() {
	_ = godotenv.Load()

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := context.Background()

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	codec, err := token.NewCodec([]byte(cfg.TokenSecret), cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token codec setup failed")
	}

	// persistence setup; a missing database drops the server into
	// memory-backed dev mode instead of refusing to start
	var (
		ledger usecase.ApplicationLedger
		users  usecase.UserStore
		jobs   usecase.JobStore
	)
	pool, err := infra.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Warn().Err(err).Msg("database not available, using in-memory stores")
		memLedger := repo.NewMemoryLedger()
		ledger = memLedger
		users = repo.NewMemoryUsers()
		jobs = repo.NewMemoryJobs(memLedger)
	} else {
		if err := migration.RunMigrations(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
		ledger = repo.NewApplicationsRepo(pool)
		users = repo.NewUsersRepo(pool)
		jobs = repo.NewJobsRepo(pool)
	}

	var codes usecase.CodeStore
	rdb, err := infra.NewRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Warn().Err(err).Msg("redis not available, keeping codes in memory")
		codes = repo.NewMemoryCodes()
	} else {
		codes = redisstore.NewCodes(rdb)
	}

	files, err := storage.NewDisk(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("upload dir setup failed")
	}

	auth := usecase.NewAuth(users, codes, mail.NewLogSender(log), codec)
	applications := usecase.NewApplications(ledger, files)
	jobBoard := usecase.NewJobs(jobs)

	// body limit sits above the upload ceiling so oversized resumes reach
	// the validator and get the documented 400 instead of a transport 413
	app := fiber.New(fiber.Config{BodyLimit: 10 << 20})

	guard := httpadapter.NewGuard(codec, log)
	handler := httpadapter.NewHandler(applications, jobBoard, log)
	authHandler := httpadapter.NewAuthHandler(auth, log)
	httpadapter.RegisterRoutes(app, guard, handler, authHandler)

	log.Info().Str("port", cfg.Port).Msg("server listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
