package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lukamv/studysuite/internal/api"
	"github.com/lukamv/studysuite/internal/config"
	"github.com/lukamv/studysuite/internal/db"
	"github.com/lukamv/studysuite/internal/identity"
	"github.com/lukamv/studysuite/internal/jobs"
	"github.com/lukamv/studysuite/internal/library"
	"github.com/lukamv/studysuite/internal/logger"
	"github.com/lukamv/studysuite/internal/mindmap"
	"github.com/lukamv/studysuite/internal/quiz"
	"github.com/lukamv/studysuite/internal/repository/sqlite"
	"github.com/lukamv/studysuite/internal/services"
	"github.com/lukamv/studysuite/internal/supabase"
	"github.com/lukamv/studysuite/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("StudySuite Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("questions_csv=%s", cfg.QuestionsCSV)
	log.Debug("flashcards_dir=%s", cfg.FlashcardsDir)
	log.Debug("library_dir=%s", cfg.LibraryDir)
	log.Debug("mindmap_zip=%s", cfg.MindmapZip)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("scan_worker_count=%d", cfg.ScanWorkerCount)
	log.Debug("scan_queue_size=%d", cfg.ScanQueueSize)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Load the question bank
	questions, problems, err := quiz.LoadQuestions(cfg.QuestionsCSV)
	if err != nil {
		log.Error("failed to load question bank: %v", err)
		os.Exit(1)
	}
	log.Info("question bank loaded: %d questions", len(questions))
	for _, p := range problems {
		log.Warn("question bank row %d skipped: %s", p.RowNum, p.Err)
	}

	// File-backed content
	libStore, err := library.NewStore(cfg.LibraryDir)
	if err != nil {
		log.Error("failed to open library: %v", err)
		os.Exit(1)
	}
	gallery := mindmap.NewGallery(cfg.MindmapZip, cfg.MindmapCacheDir)

	// Repositories
	deckRepo := sqlite.NewDeckRepository(database.DB)
	cardRepo := sqlite.NewCardRepository(database.DB)

	// Background jobs
	pool := worker.NewPool(cfg.ScanWorkerCount, cfg.ScanQueueSize)
	queue := jobs.NewWorkerQueue(pool, libStore, deckRepo, cfg.FlashcardsDir)

	// Remote progress store and identity
	store := supabase.New(cfg.SupabaseURL, cfg.SupabaseAnonKey, time.Duration(cfg.RemoteTimeoutSecs)*time.Second)
	provider := identity.NewJWTProvider(cfg.SupabaseJWTSecret)

	// Services
	studyService := services.NewStudyService(store, questions, problems)
	deckService := services.NewDeckService(deckRepo, cardRepo, queue)
	libraryService := services.NewLibraryService(libStore, queue)

	srv := &api.Server{
		Study:    studyService,
		Decks:    deckService,
		Library:  libraryService,
		Mindmaps: gallery,
		Identity: provider,
		DB:       database,
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	// Warm up background state
	if err := queue.EnqueueDeckImport(0); err != nil {
		log.Warn("could not queue initial deck import: %v", err)
	}
	if err := queue.EnqueueLibraryScan(); err != nil {
		log.Warn("could not queue initial library scan: %v", err)
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Cancel worker context
	log.Debug("stopping worker pool")
	cancel()

	// Shutdown HTTP server
	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	pool.Stop()

	log.Info("===========================================")
	log.Info("StudySuite Server Stopped")
	log.Info("===========================================")
}
