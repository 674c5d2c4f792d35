// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/uno/internal/cache"
	"github.com/jason-s-yu/uno/internal/config"
	"github.com/jason-s-yu/uno/internal/game"
	"github.com/jason-s-yu/uno/internal/handlers"
	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/jason-s-yu/uno/internal/models"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

// demoPlayers is the sample table seated when UNO_DEMO_TABLE is set.
func demoPlayers() []*models.Player {
	return []*models.Player{
		models.NewPlayer("jorge1234", "Jorge", "https://pbs.twimg.com/profile_images/1229508740510109697/Ww22knVc_400x400.jpg"),
		models.NewPlayer("calel1234", "Calel", "https://pbs.twimg.com/profile_images/1229508740510109697/Ww22knVc_400x400.jpg"),
		models.NewPlayer("Facu1234", "Facu", "https://pbs.twimg.com/profile_images/1196581886916747264/PaMavazA_400x400.jpg"),
		models.NewPlayer("nikomendo", "Nicolas", "https://pbs.twimg.com/profile_images/1106827262907899904/S1BXkb04_400x400.jpg"),
	}
}

func main() {
	logger := logrus.New()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the journal is optional, the table runs without Redis
	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.WithError(err).Warn("action journal disabled")
	} else {
		defer rdb.Close()
	}
	journal := cache.NewJournal(rdb, cfg.QueueName, logger)
	defer journal.Flush()

	srv := handlers.NewGameServer(logger, func() *game.GameEngine {
		return game.NewEngine(
			game.WithLogger(logger),
			game.WithHouseRules(game.HouseRules{HandSize: cfg.HandSize, MaxPlayers: cfg.MaxPlayers}),
			game.WithShuffler(game.NewShuffler(cfg.ShuffleSeed)),
			game.WithRecorder(journal),
		)
	})

	if cfg.DemoTable {
		err := srv.Do(func(e *game.GameEngine) error {
			if err := e.Join(demoPlayers()); err != nil {
				return err
			}
			return e.Start()
		})
		if err != nil {
			logger.Fatalf("failed to seat demo table: %v", err)
		}
	}

	mux := http.NewServeMux()
	logged := middleware.LogMiddleware(logger)
	mux.Handle("/game/ws", logged(handlers.GameWSHandler(logger, srv)))
	mux.Handle("/game/state", logged(handlers.StateHandler(srv)))
	mux.Handle("/game/reset", logged(handlers.ResetHandler(srv)))

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}
	go func() {
		logger.Infof("Running on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server exited: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("graceful shutdown failed")
	}
}
