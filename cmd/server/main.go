package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/devlog/devlog-server/articles"
	"github.com/devlog/devlog-server/auth"
	"github.com/devlog/devlog-server/internal/config"
	"github.com/devlog/devlog-server/media"
	"github.com/devlog/devlog-server/server"
	"github.com/devlog/devlog-server/staging"
	"github.com/devlog/devlog-server/token"
	"github.com/devlog/devlog-server/users"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	for {
		if err := run(log); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run(log zerolog.Logger) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	store := staging.NewRedisStore(staging.Config{
		Addr:     c.GetRedisAddr(),
		Password: c.GetRedisPassword(),
		DB:       c.GetRedisDB(),
		PoolSize: c.GetRedisPoolSize(),
	})
	defer store.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		return errors.Wrap(err, "staging store unreachable")
	}

	userRepo := users.NewInMemoryRepo()
	tokenService := token.NewService(store, c.GetRefreshTokenExpiry())
	codec := token.NewCodec(token.NewHMACSigner(c.GetTokenSecret()), c.GetAccessTokenExpiry())
	authService, err := auth.NewService(userRepo, tokenService, codec, c.GetAccessTokenExpiry(), c.GetRefreshTokenExpiry())
	if err != nil {
		return err
	}

	reconciler := media.NewReconciler(store, c.GetMediaDir(), c.GetMediaURLPrefix(), log)
	articleService, err := articles.NewService(articles.NewInMemoryRepo(), reconciler, c.GetQuillImageDir(), c.GetQuillVideoDir(), log)
	if err != nil {
		return err
	}

	handler, err := server.New(c, userRepo, authService, tokenService, articleService, reconciler, log)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	go listenAndServe(httpServer, log)
	waitForStopSignal()
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server, log zerolog.Logger) {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server.Shutdown")
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
