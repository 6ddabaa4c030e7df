package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moovies/moovies-api/internal/config"
	httpserver "github.com/moovies/moovies-api/internal/http"
	"github.com/moovies/moovies-api/internal/repository"
	"github.com/moovies/moovies-api/internal/service"
	"github.com/moovies/moovies-api/internal/store"
	"github.com/moovies/moovies-api/internal/tmdb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[moovies-api] ", log.LstdFlags|log.Lshortfile)

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	catalogTimeout := time.Duration(cfg.TMDBTimeoutSecs) * time.Second
	catalog, err := tmdb.NewHTTPClient(cfg.TMDBURL, cfg.TMDBAPIKey, catalogTimeout, logger)
	if err != nil {
		log.Fatalf("init tmdb client: %v", err)
	}

	repo := repository.New(st)
	cache := service.NewMovieCache(repo, catalog, catalogTimeout, logger)
	ratings := service.NewRatingService(cache, repo, logger)
	watch := service.NewListService(cache, ratings, repo.WatchList, logger)
	watched := service.NewListService(cache, ratings, repo.WatchedList, logger)
	details := service.NewDetailService(cache, ratings, watch, watched)

	server := httpserver.New(cfg, st, httpserver.Services{
		Movies:  cache,
		Ratings: ratings,
		Watch:   watch,
		Watched: watched,
		Details: details,
	}, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
