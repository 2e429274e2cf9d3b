package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sanilblank/blog-api/internal/app"
	"github.com/Sanilblank/blog-api/internal/auth"
	"github.com/Sanilblank/blog-api/internal/categories"
	"github.com/Sanilblank/blog-api/internal/comments"
	"github.com/Sanilblank/blog-api/internal/observability"
	"github.com/Sanilblank/blog-api/internal/platform/cache"
	"github.com/Sanilblank/blog-api/internal/platform/db"
	"github.com/Sanilblank/blog-api/internal/policy"
	"github.com/Sanilblank/blog-api/internal/posts"
	"github.com/Sanilblank/blog-api/internal/rbac"
	"github.com/Sanilblank/blog-api/internal/tags"
	"github.com/Sanilblank/blog-api/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	registry := rbac.DefaultRegistry()
	resolver := rbac.NewResolver(registry)
	rbacService := rbac.NewService(dbpool, registry)
	rbacMiddleware := rbac.Middleware{Resolver: resolver, Logger: logger}
	gate := policy.NewGate(resolver, metrics)

	userService := users.NewService(users.NewRepository(dbpool), cfg.BcryptCost, cfg.DefaultPerPage)
	usersHandler := users.NewHandler(logger, userService, gate, rbacMiddleware)

	tokens := auth.NewTokenStore(redisClient, cfg.TokenTTL)
	authService := auth.NewService(userService, tokens, rbacService)
	authHandler := auth.NewHandler(logger, authService, rbacMiddleware)

	postService := posts.NewService(posts.NewRepository(dbpool), cfg.DefaultPerPage)
	postsHandler := posts.NewHandler(logger, postService, gate, rbacMiddleware)

	commentService := comments.NewService(comments.NewRepository(dbpool), cfg.DefaultPerPage)
	commentsHandler := comments.NewHandler(logger, commentService, postsHandler, gate, rbacMiddleware)

	categoriesHandler := categories.NewHandler(logger,
		categories.NewService(categories.NewRepository(dbpool), cfg.DefaultPerPage), rbacMiddleware)
	tagsHandler := tags.NewHandler(logger,
		tags.NewService(tags.NewRepository(dbpool), cfg.DefaultPerPage), rbacMiddleware)
	rolesHandler := rbac.NewRolesHandler(logger, rbacService, rbacMiddleware)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthService:       authService,
		AuthHandler:       authHandler,
		UsersHandler:      usersHandler,
		PostsHandler:      postsHandler,
		CommentsHandler:   commentsHandler,
		CategoriesHandler: categoriesHandler,
		TagsHandler:       tagsHandler,
		RolesHandler:      rolesHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
