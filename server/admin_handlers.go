package server

import "net/http"

// AdminStatusHandler reports basic process information for operators.
func (s *Server) AdminStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"app":    s.config.GetAppName(),
			"env":    s.env,
			"routes": len(s.routes),
		})
	}
}
