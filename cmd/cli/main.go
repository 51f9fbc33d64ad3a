package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/todoauth/internal/buildinfo"
	"github.com/dmitrijs2005/todoauth/internal/cli"
	"github.com/dmitrijs2005/todoauth/internal/config"
	"github.com/dmitrijs2005/todoauth/internal/guard"
	"github.com/dmitrijs2005/todoauth/internal/logging"
	"github.com/dmitrijs2005/todoauth/internal/mail"
	"github.com/dmitrijs2005/todoauth/internal/repositories/kv"
	"github.com/dmitrijs2005/todoauth/internal/repositories/resettokens"
	"github.com/dmitrijs2005/todoauth/internal/repositories/tokens"
	"github.com/dmitrijs2005/todoauth/internal/repositories/users"
	"github.com/dmitrijs2005/todoauth/internal/services"
	"github.com/dmitrijs2005/todoauth/internal/session"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	store, err := kv.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("error opening store: %v", err)
	}
	defer store.Close()

	outbox := mail.NewOutbox()
	svc := services.NewAuthService(services.Stores{
		Users:       users.NewKVRepository(store, logger),
		Tokens:      tokens.NewKVRepository(store, logger),
		ResetTokens: resettokens.NewKVRepository(store, logger),
	}, mail.Multi{mail.NewLogMailer(logger), outbox}, cfg, logger)

	mgr := session.NewManager(svc, store, logger)
	mgr.Init(ctx)

	table := guard.NewTable(guard.DefaultRoutes())
	nav := guard.NewNavigator(table, guard.NewGuard(table, mgr), logger)

	app := cli.NewApp(mgr, nav, outbox, os.Stdin, os.Stdout)
	if err := app.Run(ctx); err != nil {
		logger.Error(ctx, "cli stopped", "error", err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mgr.Close(closeCtx); err != nil {
		logger.Error(closeCtx, "failed to close session", "error", err)
	}
}
