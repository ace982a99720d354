package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/duythanhle/live-beats/config"
	"github.com/duythanhle/live-beats/core/auth"
	"github.com/duythanhle/live-beats/core/importer"
	"github.com/duythanhle/live-beats/core/notify"
	"github.com/duythanhle/live-beats/core/playback"
	"github.com/duythanhle/live-beats/db"
	"github.com/duythanhle/live-beats/logger"
	"github.com/duythanhle/live-beats/repository"
	"github.com/duythanhle/live-beats/storage"
)

// Start initializes and starts the HTTP server.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	auth.InitJWT(cfg.JWTSecret)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := storage.InitMinio(cfg); err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}

	// Connect to the database
	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.DB.Close()

	if err := db.ConnectGormDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database with GORM: %v", err)
	}
	defer db.CloseGormDB()

	// Connect to Redis
	if err := db.ConnectRedis(cfg); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer db.CloseRedis()
	log.Println("Successfully connected to Redis")

	// Initialize database schema
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	trackRepo := repository.NewMySQLTrackRepository(db.DB)
	userRepo := repository.NewMySQLUserRepository(db.DB)
	playbackStore := repository.NewGormPlaybackStore(db.GormDB)
	notifier := notify.NewRedisNotifier(db.RedisClient)
	playbackSvc := playback.NewService(playbackStore, notifier, nil)

	apiHandler := NewAPIHandler(trackRepo, userRepo, playbackSvc, notifier, cfg)

	// Import watcher for dropped audio files, if configured.
	if cfg.ImportDir != "" && cfg.ImportUserID != 0 {
		ensureDirExists(cfg.ImportDir)
		watcher := importer.New(cfg.ImportDir, cfg.ImportUserID, trackRepo)
		if err := watcher.Start(); err != nil {
			log.Fatalf("Failed to start import watcher: %v", err)
		}
		defer watcher.Stop()
	}

	router := mux.NewRouter()

	// CORS middleware
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Auth endpoints
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)

	// Track library endpoints
	router.HandleFunc("/api/tracks", apiHandler.AuthMiddleware(apiHandler.GetTracksHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/upload", apiHandler.AuthMiddleware(apiHandler.UploadTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteTrackHandler)).Methods(http.MethodDelete)

	// Playback endpoints
	router.HandleFunc("/api/playback/{id}/play", apiHandler.AuthMiddleware(apiHandler.PlayTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playback/{id}/pause", apiHandler.AuthMiddleware(apiHandler.PauseTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playback/current", apiHandler.AuthMiddleware(apiHandler.CurrentTrackHandler)).Methods(http.MethodGet)

	// Playback event feed (websocket)
	router.HandleFunc("/api/events/ws", apiHandler.WebSocketEventsHandler).Methods(http.MethodGet)

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s...", cfg.ServerAddr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func ensureDirExists(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("Creating directory: %s", path)
		if err := os.MkdirAll(path, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", path, err)
		}
	} else if err != nil {
		log.Fatalf("Failed to check directory %s: %v", path, err)
	}
}
