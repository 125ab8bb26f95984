package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"support-chat-backend/internal/api"
	"support-chat-backend/internal/api/router"
	"support-chat-backend/internal/completion"
	"support-chat-backend/internal/config"
	"support-chat-backend/internal/database"
	"support-chat-backend/internal/env"
	internaljwt "support-chat-backend/internal/jwt"
	"support-chat-backend/internal/model"
	"support-chat-backend/internal/queue"
	"support-chat-backend/internal/service/auth"
	"support-chat-backend/internal/service/chat"
	"support-chat-backend/internal/store"
	"support-chat-backend/internal/websocket"

	"github.com/go-redis/redis/v8"
)

type repository interface {
	store.Repository
	store.StaffSeeder
}

func main() {
	env.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := newRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("store init failed: %v", err)
	}
	seedStaff(ctx, cfg, repo)

	var (
		feed  store.Feed
		relay *websocket.RedisRelay
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Fatalf("redis ping %s: %v", cfg.RedisAddr, err)
		}
		defer rdb.Close()
		feed = store.NewRedisFeed(rdb)
		relay = websocket.NewRedisRelay(rdb)
		log.Printf("[main] using redis change feed at %s", cfg.RedisAddr)
	} else {
		feed = store.NewLocalFeed()
		log.Printf("[main] using in-process change feed")
	}
	defer feed.Close()

	hub := websocket.NewHub()
	go hub.Run(ctx)
	detach := hub.Attach(feed)
	defer detach()
	if relay != nil {
		hub.UseRelay(relay)
		go relay.Run(ctx, hub)
	}

	httpQueue := queue.NewRequestQueueManager("http", cfg.HTTPWorkers*4, cfg.HTTPWorkers)
	engineQueue := queue.NewRequestQueueManager("engine", cfg.EngineWorkers*16, cfg.EngineWorkers)

	completer := completion.NewClient(completion.Options{
		URL:     cfg.CompletionURL,
		APIKey:  cfg.CompletionAPIKey,
		Model:   cfg.CompletionModel,
		Timeout: cfg.CompletionTimeout,
	})

	chatService := chat.New(store.NewNotifying(repo, feed), completer, engineQueue, chat.Options{
		FollowUpDelay:         cfg.FollowUpDelay,
		AssignOnlyIfUnclaimed: cfg.AssignOnlyIfUnclaimed,
		CompletionTimeout:     cfg.CompletionTimeout,
	})
	authService := auth.New(repo, internaljwt.NewIssuer(cfg.StaffSecret, cfg.StaffTokenTTL, nil))

	server := api.NewAPIServer(
		api.Options{ListenAddr: cfg.ListenAddr, AllowedOrigins: cfg.AllowedOrigins},
		httpQueue,
		chatService,
		authService,
		websocket.NewHandler(hub, cfg.AllowedOrigins),
		router.All("/api")...,
	)

	errc := make(chan error, 1)
	go func() {
		errc <- server.Run()
	}()

	select {
	case err := <-errc:
		if err != nil {
			log.Printf("[main] server stopped: %v", err)
		}
	case <-ctx.Done():
		log.Printf("[main] shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] http shutdown: %v", err)
	}

	chatService.Wait()
	engineQueue.Shutdown()
	httpQueue.Shutdown()
}

func newRepository(ctx context.Context, cfg config.Config) (repository, error) {
	if cfg.StoreBackend == config.BackendMemory {
		log.Printf("[main] using in-memory store")
		return store.NewMemoryRepository(nil), nil
	}

	db, err := database.NewDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("[main] using dynamodb store in %s", cfg.AWSRegion)
	return store.NewDynamoRepository(db, nil), nil
}

func seedStaff(ctx context.Context, cfg config.Config, seeder store.StaffSeeder) {
	if cfg.SeedStaff == nil {
		return
	}

	hash, err := internaljwt.HashPassword(cfg.SeedStaff.Password)
	if err != nil {
		log.Fatalf("hash seed staff password: %v", err)
	}
	user, err := seeder.EnsureStaffUser(ctx, model.StaffUserItem{
		Email:        cfg.SeedStaff.Email,
		Name:         cfg.SeedStaff.Name,
		PasswordHash: hash,
	})
	if err != nil {
		log.Fatalf("seed staff user: %v", err)
	}
	log.Printf("[main] staff account %s ready", user.Email)
}
