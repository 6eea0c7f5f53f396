package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"targetbrowse/db"
	"targetbrowse/internal/handler"
	"targetbrowse/internal/notify"
	"targetbrowse/internal/quota"
	"targetbrowse/internal/repository"
	"targetbrowse/internal/suggest"
	"targetbrowse/pkg/youtube"
)

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	err := db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	err = db.ConnectRedis()
	if err != nil {
		log.Fatalf("error connecting to Redis: %v", err)
	}
	defer db.CloseRedis()

	apiKey := os.Getenv("YOUTUBE_API_KEY")
	if apiKey == "" {
		log.Fatal("YOUTUBE_API_KEY environment variable is not set")
	}

	userRepo := repository.NewUserRepository(db.DB)
	videoRepo := repository.NewVideoRepository(db.DB)
	suggestionRepo := repository.NewSuggestionRepository(db.DB)
	quotaRepo := repository.NewQuotaRepository(db.DB)

	notifier := notify.NewQueueNotifier(db.NotifyQueueKey)

	ledger := quota.NewLedger(quota.DefaultConfig(), quotaRepo)
	if used, err := quotaRepo.UsedToday(); err != nil {
		slog.Error("error loading today's quota usage, starting from zero", "error", err)
	} else {
		ledger.Prime(used)
	}

	client := youtube.NewClient(apiKey, ledger, notifier, youtube.DefaultConfig())

	cfg := suggest.DefaultConfig()
	orchestrator := suggest.NewOrchestrator(client, userRepo, cfg)
	curator := suggest.NewCurator(orchestrator, userRepo, videoRepo, suggestionRepo, notifier, cfg)

	suggestionHandler := handler.NewSuggestionHandler(curator, suggestionRepo)
	quotaHandler := handler.NewQuotaHandler(ledger, quotaRepo)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.POST("/suggestions/generate", suggestionHandler.Generate)
	r.GET("/suggestions", suggestionHandler.List)
	r.POST("/suggestions/:id/approve", suggestionHandler.Approve)
	r.POST("/suggestions/:id/deny", suggestionHandler.Deny)
	r.POST("/suggestions/cleanup", suggestionHandler.Cleanup)
	r.GET("/quota", quotaHandler.GetQuota)
	r.GET("/health", quotaHandler.GetHealth)

	err = r.Run(":8080")
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
