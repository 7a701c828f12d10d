package server

import (
	"fmt"
	"net/http"
	"strconv"

	"rank-tracker/internal/apperror"

	"github.com/go-chi/chi/v5"
)

type rankingsParams struct {
	Bracket string `validate:"oneof=1v1 2v2 rotating"`
	Region  string `validate:"oneof=all us-e eu sea brz aus us-w jpn sa me"`
	Page    int    `validate:"min=1,max=1000"`
}

var statsMessages = map[int]string{
	http.StatusNotFound: "Player not found",
}

func (s *Server) playerStats(w http.ResponseWriter, r *http.Request) {
	playerID, err := s.playerParam(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}

	body, err := s.stats.PlayerStats(r.Context(), playerID)
	if err != nil {
		s.fail(w, r, err, statsMessages)
		return
	}
	writeRaw(w, body)
}

func (s *Server) playerRanked(w http.ResponseWriter, r *http.Request) {
	playerID, err := s.playerParam(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}

	body, err := s.stats.PlayerRanked(r.Context(), playerID)
	if err != nil {
		s.fail(w, r, err, statsMessages)
		return
	}
	writeRaw(w, body)
}

func (s *Server) rankings(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		s.fail(w, r, fmt.Errorf("page: %w", apperror.ErrBadRequest), nil)
		return
	}
	params := rankingsParams{
		Bracket: chi.URLParam(r, "bracket"),
		Region:  chi.URLParam(r, "region"),
		Page:    page,
	}
	if err := s.validate.Struct(params); err != nil {
		s.fail(w, r, fmt.Errorf("rankings params: %v: %w", err, apperror.ErrBadRequest), nil)
		return
	}

	body, err := s.stats.Rankings(r.Context(), params.Bracket, params.Region, params.Page)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeRaw(w, body)
}
