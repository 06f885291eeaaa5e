package server

const (
	RouteAuthLogin     = "/auth/login"
	RouteAuthToken     = "/auth/token"
	RouteAuthRefresh   = "/auth/refresh"
	RouteAuthLogout    = "/auth/logout"
	RouteAuthLogoutAll = "/auth/logout-all"

	RouteQuillsUploadImage  = "/quills/upload_image"
	RouteQuillsUploadVideo  = "/quills/upload_video"
	RouteQuillsMarkImages   = "/quills/mark_delete_images/{mark_id}"
	RouteQuillsUnmarkImages = "/quills/unmark_delete_images/{mark_id}"
	RouteQuillsMarkVideos   = "/quills/mark_delete_videos/{mark_id}"
	RouteQuillsUnmarkVideos = "/quills/unmark_delete_videos/{mark_id}"

	RouteArticles  = "/articles"
	RouteArticleID = "/articles/{article_id}"

	RouteLottoRandom   = "/lotto/random"
	RouteLottoFrequent = "/lotto/frequent"

	RouteAdminStatus = "/admin/status"
)
