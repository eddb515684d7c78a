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

	"github.com/justsurfingit/job-application-tracker/internal/auth"
	"github.com/justsurfingit/job-application-tracker/internal/config"
	"github.com/justsurfingit/job-application-tracker/internal/database"
	"github.com/justsurfingit/job-application-tracker/internal/handlers"
	"github.com/justsurfingit/job-application-tracker/internal/live"
	"github.com/justsurfingit/job-application-tracker/internal/services"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration (TOML file, .env, environment)
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "jobtracker.toml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// 2. Database Connection
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	// 3. Initialize Core Services (Dependencies)
	hub := live.NewHub()
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL.Duration)
	appService := services.NewApplicationService(db, hub)
	accountService := services.NewAccountService(db, tokens)
	matcherService := services.NewMatcherService(appService)

	var llmService *services.LLMService
	if cfg.ExtractionEnabled() {
		llmService, err = services.NewLLMService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Printf("⚠️  Gemini client unavailable, scanning disabled: %v", err)
		} else {
			log.Printf("✅ Gemini client ready (%s)", cfg.Gemini.Model)
		}
	} else {
		log.Println("⚠️  GEMINI_API_KEY not set, job scanning and inbox verdicts are disabled.")
	}
	var scanService *services.ScanService
	if llmService != nil {
		scanService = services.NewScanService(llmService, cfg.Gemini.FetchTimeout.Duration)
	}

	var notionService *services.NotionService
	if cfg.NotionEnabled() {
		notionService = services.NewNotionService(cfg.Notion.Token, cfg.Notion.DatabaseID, appService)
		if err := notionService.Ping(ctx); err != nil {
			log.Printf("⚠️  Notion database not reachable: %v", err)
		} else {
			log.Println("✅ Notion export enabled.")
		}
	} else {
		log.Println("⚠️  NOTION_TOKEN or NOTION_DB_ID not set, Notion export is disabled.")
	}

	// 4. Initialize Gmail Integration and Email Watcher
	if cfg.InboxEnabled() {
		startInboxWatcher(ctx, cfg, accountService, appService, matcherService, llmService)
	}

	// 5. Setup Router & Routes
	r := handlers.NewRouter(handlers.Deps{
		Tokens:       tokens,
		Accounts:     accountService,
		Applications: appService,
		Scanner:      scanService,
		Notion:       notionService,
		Hub:          hub,
		CORSOrigins:  cfg.CORSOrigins,
	})

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	go func() {
		log.Printf("🚀 Server starting on %s...", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}

func startInboxWatcher(ctx context.Context, cfg *config.Config, accounts *services.AccountService, apps *services.ApplicationService, matcher *services.MatcherService, llm *services.LLMService) {
	log.Println("Initializing Gmail Client...")

	owner, err := accounts.ByEmail(ctx, cfg.Inbox.AccountEmail)
	if err != nil {
		log.Printf("⚠️  Inbox account %s: %v. Watcher disabled.", cfg.Inbox.AccountEmail, err)
		return
	}

	httpClient, err := auth.GmailClient(ctx, cfg.Inbox.CredentialsPath, cfg.Inbox.TokenPath, true)
	if err != nil {
		log.Printf("⚠️  Gmail authorisation failed: %v", err)
		return
	}

	gmailService, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		log.Printf("⚠️  Failed to create Gmail Service: %v", err)
		return
	}
	log.Println("✅ Gmail Service connected successfully.")

	emailService := services.NewEmailService(apps.DB, llm, gmailService, matcher, apps, owner.ID)
	emailService.StartWatcher(ctx, cfg.Inbox.PollInterval.Duration)
}
