package main // Entry point package

import (
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nzeleniuk/contactbook/internal/auth"
	"github.com/nzeleniuk/contactbook/internal/config"
	"github.com/nzeleniuk/contactbook/internal/database"
	"github.com/nzeleniuk/contactbook/internal/handler"
	"github.com/nzeleniuk/contactbook/internal/queue"
	"github.com/nzeleniuk/contactbook/internal/repository"
	"github.com/nzeleniuk/contactbook/internal/router"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		// Without Redis the denylist cannot work; in fail-closed mode
		// that would reject every authenticated request, so refusing to
		// start is more honest than serving a sea of 503s.
		if !cfg.DenylistFailOpen {
			log.Fatal("redis unavailable and denylist is fail-closed; refusing to start")
		}
		log.Print("redis unavailable: revocation denylist and login throttling disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	contacts := repository.NewContactRepo(db)

	codec := auth.NewCodec(cfg.JWTSecret)
	denylist := auth.NewRedisDenylist(rdb, cfg.DenylistFailOpen)
	var limiter *auth.LoginLimiter
	if rdb != nil {
		limiter = auth.NewLoginLimiter(rdb, cfg.LoginMaxAttempts,
			time.Duration(cfg.LoginWindowSec)*time.Second)
	}
	svc := auth.NewService(auth.Config{
		AccessTTL:             time.Duration(cfg.AccessTTLMin) * time.Minute,
		RefreshTTL:            time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
		BcryptCost:            cfg.BcryptCost,
		RequireConfirmedEmail: cfg.RequireConfirmedEmail,
	}, codec, users, tokens, denylist, limiter)

	// Background mail consumer: logs outbound mail events until a real
	// mailer takes over the queue.
	go func() {
		if err := queue.StartMailConsumer(); err != nil {
			log.Printf("mail consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e,
		svc,
		handler.NewAuthHandler(svc),
		handler.NewUserHandler(users),
		handler.NewContactHandler(contacts),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
