package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dkralj/banter/internal/config"
	"github.com/dkralj/banter/internal/crypto"
	"github.com/dkralj/banter/internal/database"
	"github.com/dkralj/banter/internal/limiter"
	postgresrepo "github.com/dkralj/banter/internal/repository/postgres"
	"github.com/dkralj/banter/internal/service"
	"github.com/dkralj/banter/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal(err)
	}

	// At-rest message encryption
	var sealer *crypto.Sealer
	if cfg.EncryptionKey != "" {
		key, err := crypto.DeriveKey(cfg.EncryptionKey)
		if err != nil {
			log.Fatal(err)
		}
		sealer, err = crypto.NewSealer(key)
		if err != nil {
			log.Fatal(err)
		}
	} else {
		log.Println("WARNING: ENCRYPTION_KEY not set, messages will be stored in plaintext")
	}

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	sessionRepo := postgresrepo.NewSessionRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)
	actionRepo := postgresrepo.NewAdminActionRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, sessionRepo, cfg.SessionLifetime)
	messageService := service.NewMessageService(messageRepo, actionRepo, sealer)
	moderationService := service.NewModerationService(userRepo, actionRepo, sessionRepo, messageService)

	// Live connection layer
	registry := ws.NewRegistry()
	hub := ws.NewHub(registry)
	moderationService.SetDisconnector(hub)

	gateway := ws.NewGateway(hub, authService, messageService, limiter.New(), cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("GET /ws", gateway.ServeWS())

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	server := &http.Server{Addr: addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	// Expired sessions are purged in the background so the sessions table
	// does not accumulate dead rows.
	g.Go(func() error {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n, err := authService.CleanupExpired(context.Background()); err != nil {
					log.Printf("session cleanup: %v", err)
				} else if n > 0 {
					log.Printf("session cleanup: removed %d expired sessions", n)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}
