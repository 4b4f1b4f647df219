// Command server runs the habit completion validation and reward engine.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	habitsapi "github.com/habitloop/habitloop/internal/api/habits"
	"github.com/habitloop/habitloop/internal/api/middleware"
	profileapi "github.com/habitloop/habitloop/internal/api/profile"
	shopapi "github.com/habitloop/habitloop/internal/api/shop"
	"github.com/habitloop/habitloop/internal/cache"
	"github.com/habitloop/habitloop/internal/config"
	"github.com/habitloop/habitloop/internal/evaluator"
	"github.com/habitloop/habitloop/internal/repository"
	"github.com/habitloop/habitloop/internal/service/badges"
	"github.com/habitloop/habitloop/internal/service/challenges"
	"github.com/habitloop/habitloop/internal/service/completion"
	habitsvc "github.com/habitloop/habitloop/internal/service/habits"
	"github.com/habitloop/habitloop/internal/service/questions"
	"github.com/habitloop/habitloop/internal/service/rewards"
	"github.com/habitloop/habitloop/internal/service/scoring"
	shopsvc "github.com/habitloop/habitloop/internal/service/shop"
	"github.com/habitloop/habitloop/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.Get()

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	redisCache, err := cache.NewRedis(&cfg.Database.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisCache.Close()

	loc, err := cfg.Rewards.GetLocation()
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Rewards.Timezone).Msg("Invalid timezone")
	}

	// Repositories
	habitRepo := repository.NewHabitRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	shopRepo := repository.NewShopRepository(db)
	challengeRepo := repository.NewChallengeRepository(db)

	// External evaluator (optional; scorer degrades to the heuristic)
	evalClient := evaluator.NewClient(&cfg.Evaluator, log)

	// Services
	generator, err := questions.NewGenerator(cfg.Questions.TemplatesPath, cfg.Questions.PerAttempt, evalClient, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load question templates")
	}
	scorer := scoring.NewScorer(evalClient, log)
	badgeEval := badges.NewEvaluator(log)
	challengeSvc := challenges.NewService(challengeRepo, log)
	rewardEngine := rewards.NewEngine(cfg.Rewards.EarlyBirdHour, loc)
	completionSvc := completion.NewService(
		db, habitRepo, attemptRepo, profileRepo,
		generator, scorer, badgeEval, challengeSvc, rewardEngine,
		redisCache, loc, log,
	)
	habitService := habitsvc.NewService(habitRepo, log)
	shopService := shopsvc.NewService(db, shopRepo, profileRepo, log)

	// HTTP server
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api/v1")
	api.Use(middleware.RequireUser())
	habitsapi.NewHandler(habitService, completionSvc, log).RegisterRoutes(api)
	shopapi.NewHandler(shopService, log).RegisterRoutes(api)
	profileapi.NewHandler(profileRepo, log).RegisterRoutes(api)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
}
