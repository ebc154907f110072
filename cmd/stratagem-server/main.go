package main

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/derajoxford/stratagem-server-sub002/internal/api"
	"github.com/derajoxford/stratagem-server-sub002/internal/config"
	"github.com/derajoxford/stratagem-server-sub002/internal/constants"
	"github.com/derajoxford/stratagem-server-sub002/internal/logging"
	"github.com/derajoxford/stratagem-server-sub002/internal/storage"
	"github.com/derajoxford/stratagem-server-sub002/internal/tick"

	"github.com/gin-gonic/gin"
)

func main() {
	logging.Init(os.Getenv(constants.EnvLogFile))

	dbPath := os.Getenv(constants.EnvDBPath)
	if dbPath == "" {
		dbPath = "./data/stratagem.db"
	}
	defaultPayload, err := config.Default().Marshal()
	if err != nil {
		logging.Fatal("Failed to serialize default game config", err, nil)
	}
	db, err := storage.OpenAndMigrate(dbPath, defaultPayload)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}
	repo := storage.NewSQLiteRepository(db)

	engine := tick.New(repo, tick.Options{
		BatchSize: envInt(constants.EnvTickBatchSize, tick.DefaultBatchSize),
		Pacing:    250 * time.Millisecond,
	})

	// Background ticker: advance the world on a fixed interval. The engine
	// itself guarantees single execution, so an operator-triggered tick
	// racing the timer is safe.
	go func() {
		interval := envDuration(constants.EnvTickInterval, time.Hour)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			result := engine.Run()
			if !result.Success && !result.AlreadyRunning {
				logging.Error("scheduled tick failed", nil, logging.Fields{"message": result.Message, "error": result.Error})
			}
		}
	}()

	handler := api.NewWarHandler(repo, engine)
	router := gin.Default()
	router.GET(constants.RouteHealth, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.GET("/version", api.Version)
		apiRoutes.GET(constants.RouteState, handler.GetState)
		apiRoutes.GET(constants.RouteNations, handler.ListNations)
		apiRoutes.GET(constants.RouteWars, handler.ListWars)
		apiRoutes.GET(constants.RouteWarByID, handler.GetWar)
		apiRoutes.GET(constants.RouteWarBattles, handler.ListWarBattles)

		apiRoutes.POST(constants.RouteWarBattle, handler.SubmitBattle)
		apiRoutes.POST(constants.RouteWarCeasefire, handler.ProposeCeasefire)
		apiRoutes.POST(constants.RouteProposalRespond, handler.RespondCeasefire)

		admin := apiRoutes.Group("")
		admin.Use(api.OperatorRequired())
		admin.POST(constants.RouteAdminTick, handler.TriggerTick)
	}

	addr := os.Getenv(constants.EnvServerAddr)
	if addr == "" {
		addr = ":8080"
	}
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}

func envInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}
