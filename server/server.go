package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/devlog/devlog-server/articles"
	"github.com/devlog/devlog-server/auth"
	"github.com/devlog/devlog-server/internal/config"
	"github.com/devlog/devlog-server/lotto"
	"github.com/devlog/devlog-server/media"
	"github.com/devlog/devlog-server/token"
	"github.com/devlog/devlog-server/users"
)

type Server struct {
	env    string // Environment (e.g., "DEV", "PROD")
	mux    *http.ServeMux
	routes []string
	config config.Config
	log    zerolog.Logger

	users    users.Repo
	auth     *auth.Service
	tokens   *token.Service
	articles *articles.Service
	media    *media.Reconciler
	lotto    *lotto.Picker
}

func New(cfg config.Config, userRepo users.Repo, authService *auth.Service, tokenService *token.Service, articleService *articles.Service, reconciler *media.Reconciler, log zerolog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[Server New] config not set")
	}
	if userRepo == nil || authService == nil || tokenService == nil {
		return nil, errors.New("[Server New] auth dependencies not set")
	}
	if articleService == nil || reconciler == nil {
		return nil, errors.New("[Server New] article dependencies not set")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		log:      log,
		users:    userRepo,
		auth:     authService,
		tokens:   tokenService,
		articles: articleService,
		media:    reconciler,
		lotto:    lotto.NewPicker(),
	}

	// Bootstrap: ensure the configured admin accounts exist
	if err := s.initialiseSystem(context.Background()); err != nil {
		return nil, errors.Wrap(err, "[Server New] failed to initialise the system")
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.log.Info().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			s.log.Info().Str("path", parts[0]).Msg("route")
		}
	}
}
