package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"golang.org/x/crypto/bcrypt"

	"github.com/intromesh/intromesh/internal/accounts"
	"github.com/intromesh/intromesh/internal/alias"
	"github.com/intromesh/intromesh/internal/boot"
	"github.com/intromesh/intromesh/internal/config"
	"github.com/intromesh/intromesh/internal/conversation"
	"github.com/intromesh/intromesh/internal/db"
	dbsqlc "github.com/intromesh/intromesh/internal/db/sqlc"
	"github.com/intromesh/intromesh/internal/handlers"
	"github.com/intromesh/intromesh/internal/logger"
	"github.com/intromesh/intromesh/internal/mediation"
	messagepkg "github.com/intromesh/intromesh/internal/message"
	"github.com/intromesh/intromesh/internal/notify"
	"github.com/intromesh/intromesh/internal/realtime"
	"github.com/intromesh/intromesh/internal/server"
	"github.com/intromesh/intromesh/internal/version"
)

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := db.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			conn.Close()
			return nil
		},
	})
	return conn, nil
}

func provideDBQueries(conn *pgxpool.Pool) *dbsqlc.Queries {
	return dbsqlc.New(conn)
}

func provideAliasService(log *slog.Logger, conn *pgxpool.Pool, queries *dbsqlc.Queries) *alias.Service {
	return alias.NewService(log, conn, queries)
}

func provideConversationService(log *slog.Logger, cfg config.Config, queries *dbsqlc.Queries, aliasService *alias.Service) *conversation.Service {
	return conversation.NewService(log, queries, aliasService, int32(cfg.Mediation.MessageBudget))
}

func provideMessageService(log *slog.Logger, conn *pgxpool.Pool, queries *dbsqlc.Queries) *messagepkg.Service {
	return messagepkg.NewService(log, conn, queries)
}

func provideMailer(lc fx.Lifecycle, log *slog.Logger, cfg config.Config, accountService *accounts.Service) (*notify.Mailer, error) {
	mailer, err := notify.NewMailer(log, cfg.SMTP, accountService)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			mailer.Close()
			return nil
		},
	})
	return mailer, nil
}

func provideMediationService(
	log *slog.Logger,
	conn *pgxpool.Pool,
	queries *dbsqlc.Queries,
	conversationService *conversation.Service,
	publisher *realtime.Publisher,
	mailer *notify.Mailer,
) *mediation.Service {
	return mediation.NewService(log, conn, queries, conversationService, publisher, mailer)
}

func provideLimiter(cfg config.Config) *realtime.Limiter {
	return realtime.NewLimiter(cfg.RateLimit.Events, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)
}

func provideAuthHandler(log *slog.Logger, accountService *accounts.Service, runtimeConfig *boot.RuntimeConfig) *handlers.AuthHandler {
	return handlers.NewAuthHandler(log, accountService, runtimeConfig.JwtSecret, runtimeConfig.JwtExpiresIn)
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	RuntimeConfig  *boot.RuntimeConfig
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.RuntimeConfig.ServerAddr, params.RuntimeConfig.JwtSecret, params.ServerHandlers...)
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner, cfg config.Config, queries *dbsqlc.Queries) {
	fmt.Printf("Starting Intromesh %s\n", version.GetInfo())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := ensureSuperadmin(ctx, logger, queries, cfg); err != nil {
				return err
			}

			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}

// ensureSuperadmin bootstraps the first staff account on an empty database.
func ensureSuperadmin(ctx context.Context, log *slog.Logger, queries *dbsqlc.Queries, cfg config.Config) error {
	if queries == nil {
		return fmt.Errorf("db queries not configured")
	}
	count, err := queries.CountAccounts(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	username := strings.TrimSpace(cfg.Admin.Username)
	password := strings.TrimSpace(cfg.Admin.Password)
	email := strings.TrimSpace(cfg.Admin.Email)
	if username == "" || password == "" {
		return fmt.Errorf("admin username/password required in config.toml")
	}
	if password == "change-your-password-here" {
		log.Warn("admin password uses default placeholder; please update config.toml")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	emailValue := pgtype.Text{Valid: false}
	if email != "" {
		emailValue = pgtype.Text{String: email, Valid: true}
	}

	_, err = queries.CreateAccount(ctx, dbsqlc.CreateAccountParams{
		Username:     username,
		Email:        emailValue,
		PasswordHash: string(hashed),
		Role:         accounts.RoleSuperadmin,
		DisplayName:  pgtype.Text{String: username, Valid: true},
		IsActive:     true,
	})
	if err != nil {
		return err
	}
	log.Info("superadmin account created", slog.String("username", username))
	return nil
}

func main() {
	fx.New(
		fx.Provide(
			provideConfig,
			boot.ProvideRuntimeConfig,
			provideLogger,

			provideDBConn,
			provideDBQueries,

			accounts.NewService,
			provideAliasService,
			provideConversationService,
			provideMessageService,
			provideMailer,
			provideMediationService,

			realtime.NewHub,
			realtime.NewPublisher,
			provideLimiter,

			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(provideAuthHandler),
			provideServerHandler(handlers.NewAccountsHandler),
			provideServerHandler(handlers.NewRequestsHandler),
			provideServerHandler(handlers.NewConversationsHandler),
			provideServerHandler(handlers.NewEventsHandler),

			provideServer,
		),
		fx.Invoke(
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}
