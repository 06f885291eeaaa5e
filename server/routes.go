package server

import (
	"net/http"

	"github.com/devlog/devlog-server/media"
)

func (s *Server) initRoutes() {
	// AUTH
	s.RegisterRouteFunc("POST "+RouteAuthLogin, s.LoginHandler())
	s.RegisterRouteFunc("POST "+RouteAuthToken, s.TokenHandler())
	s.RegisterRouteFunc("POST "+RouteAuthRefresh, s.RefreshHandler())
	s.RegisterRouteFunc("POST "+RouteAuthLogout, s.LogoutHandler())
	s.RegisterRouteFunc("POST "+RouteAuthLogoutAll, s.LogoutAllHandler())

	// Rich text editor uploads and deletion-candidate staging
	s.registerAuthRoute("POST "+RouteQuillsUploadImage, s.QuillUploadHandler(s.config.GetQuillImageDir()))
	s.registerAuthRoute("POST "+RouteQuillsUploadVideo, s.QuillUploadHandler(s.config.GetQuillVideoDir()))
	s.RegisterRouteFunc("POST "+RouteQuillsMarkImages, s.MarkCandidatesHandler(media.KindImage))
	s.RegisterRouteFunc("POST "+RouteQuillsUnmarkImages, s.UnmarkCandidatesHandler(media.KindImage))
	s.RegisterRouteFunc("POST "+RouteQuillsMarkVideos, s.MarkCandidatesHandler(media.KindVideo))
	s.RegisterRouteFunc("POST "+RouteQuillsUnmarkVideos, s.UnmarkCandidatesHandler(media.KindVideo))

	// Articles
	s.RegisterRouteFunc("GET "+RouteArticles, s.ListArticlesHandler())
	s.RegisterRouteFunc("GET "+RouteArticleID, s.GetArticleHandler())
	s.registerAuthRoute("POST "+RouteArticles+"/post", s.CreateArticleHandler())
	s.registerAuthRoute("PATCH "+RouteArticleID, s.UpdateArticleHandler())
	s.registerAuthRoute("DELETE "+RouteArticleID, s.DeleteArticleHandler())

	// Lotto
	s.RegisterRouteFunc("GET "+RouteLottoRandom, s.LottoRandomHandler())
	s.RegisterRouteFunc("POST "+RouteLottoFrequent, s.LottoFrequentHandler())

	// Admin
	s.RegisterRouteHandler("GET "+RouteAdminStatus,
		ChainMiddleware(s.AdminStatusHandler(), s.APIMiddleware(s.RequireAuth(), s.AllowUsernames(s.config.GetAdminUsernames()...))...))
}

func (s *Server) registerAuthRoute(pattern string, handler http.HandlerFunc) {
	s.RegisterRouteHandler(pattern, ChainMiddleware(handler, s.APIMiddleware(s.RequireAuth())...))
}
