package server

import (
	"encoding/json"
	"net/http"
)

// LottoRandomHandler returns six uniformly drawn numbers from 1..45.
func (s *Server) LottoRandomHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string][]int{"numbers": s.lotto.Pick()})
	}
}

type lottoFrequentRequest struct {
	History [][]int `json:"history"`
	TopN    int     `json:"top_n"`
}

// LottoFrequentHandler draws six numbers from the most frequent
// numbers of past winning draws posted in the body.
func (s *Server) LottoFrequentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lottoFrequentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"detail":"invalid request body"}`, http.StatusBadRequest)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string][]int{"numbers": s.lotto.PickFrequent(req.History, req.TopN)})
	}
}
