package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/username/notafolio/backend/src/config"
	"github.com/username/notafolio/backend/src/database"
	"github.com/username/notafolio/backend/src/handlers"
	"github.com/username/notafolio/backend/src/logger"
	"github.com/username/notafolio/backend/src/parsers"
	"github.com/username/notafolio/backend/src/processors"
	"github.com/username/notafolio/backend/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	allowedOrigins := make(map[string]bool, len(config.Cfg.AllowedOrigins))
	for _, origin := range config.Cfg.AllowedOrigins {
		allowedOrigins[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("Notafolio backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	quoteCache := cache.New(config.Cfg.QuoteCacheTTL, services.CacheCleanupInterval)

	parser, err := parsers.GetParser("b3")
	if err != nil {
		stdlog.Fatalf("Failed to initialize note parser: %v", err)
	}

	operationProcessor := processors.NewOperationProcessor()
	portfolioProcessor := processors.NewPortfolioProcessor()
	taxProcessor := processors.NewTaxProcessor()

	quoteService := services.NewQuoteService(quoteCache)
	noteService := services.NewNoteService(
		database.DB,
		parser,
		operationProcessor,
		portfolioProcessor,
		taxProcessor,
		quoteService,
		reportCache,
	)

	uploadHandler := handlers.NewUploadHandler(noteService)
	noteHandler := handlers.NewNoteHandler(noteService)
	portfolioHandler := handlers.NewPortfolioHandler(noteService, quoteService)
	reportHandler := handlers.NewReportHandler(noteService)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Notafolio Backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/notes/upload", uploadHandler.HandleUpload)
		r.Get("/notes", noteHandler.HandleListNotes)
		r.Get("/notes/{noteID}", noteHandler.HandleGetNote)
		r.Delete("/notes/all", noteHandler.HandleDeleteAllNotes)

		r.Get("/portfolio", portfolioHandler.HandleGetPortfolio)
		r.Get("/quotes", portfolioHandler.HandleGetQuotes)

		r.Get("/tax", reportHandler.HandleGetTaxSummary)
		r.Get("/report", reportHandler.HandleGetReport)
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
