package server

import (
	"net/http"
	"time"

	"rank-tracker/internal/apperror"
	"rank-tracker/internal/auth"
	"rank-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type trackRequest struct {
	BrawlhallaID string `json:"brawlhallaId" validate:"required,numeric,max=20"`
	PlayerName   string `json:"playerName" validate:"required,max=64"`
}

type historyResponse struct {
	ID         string        `json:"id"`
	Rank       domain.OptInt `json:"rank"`
	Rating     int           `json:"rating"`
	RecordedAt time.Time     `json:"recordedAt"`
}

type trackedPlayerResponse struct {
	ID            string            `json:"id"`
	BrawlhallaID  string            `json:"brawlhallaId"`
	PlayerName    string            `json:"playerName"`
	CurrentRank   domain.OptInt     `json:"currentRank"`
	CurrentRating domain.OptInt     `json:"currentRating"`
	LastChecked   time.Time         `json:"lastChecked"`
	CreatedAt     time.Time         `json:"createdAt"`
	RankHistory   []historyResponse `json:"rankHistory"`
}

type trackResponse struct {
	Success     bool                  `json:"success"`
	Tracked     trackedPlayerResponse `json:"tracked"`
	HasRankData bool                  `json:"hasRankData"`
	Message     string                `json:"message"`
}

type refreshResponse struct {
	Success     bool          `json:"success"`
	Rank        domain.OptInt `json:"rank"`
	Rating      domain.OptInt `json:"rating"`
	Changed     bool          `json:"changed"`
	Recorded    bool          `json:"recorded"`
	LastChecked time.Time     `json:"lastChecked"`
	Message     string        `json:"message"`
}

type refreshOutcomeResponse struct {
	BrawlhallaID string        `json:"brawlhallaId"`
	PlayerName   string        `json:"playerName"`
	Success      bool          `json:"success"`
	Rank         domain.OptInt `json:"rank"`
	Rating       domain.OptInt `json:"rating"`
	Changed      bool          `json:"changed"`
	Recorded     bool          `json:"recorded"`
	Error        string        `json:"error,omitempty"`
}

var trackingMessages = map[int]string{
	http.StatusBadRequest: "Missing required fields",
	http.StatusNotFound:   "Player not tracked",
	http.StatusConflict:   "Player already tracked",
}

func toTrackedPlayerResponse(p *domain.TrackedPlayer) trackedPlayerResponse {
	history := make([]historyResponse, len(p.History))
	for i, h := range p.History {
		history[i] = historyResponse{
			ID:         h.ID,
			Rank:       h.Rank,
			Rating:     h.Rating,
			RecordedAt: h.RecordedAt,
		}
	}
	return trackedPlayerResponse{
		ID:            p.ID,
		BrawlhallaID:  p.ExternalID,
		PlayerName:    p.DisplayName,
		CurrentRank:   p.CurrentRank,
		CurrentRating: p.CurrentRating,
		LastChecked:   p.LastChecked,
		CreatedAt:     p.CreatedAt,
		RankHistory:   history,
	}
}

func (s *Server) listTracked(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFrom(r.Context())

	players, err := s.tracking.List(r.Context(), id.SteamID)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}

	resp := make([]trackedPlayerResponse, len(players))
	for i := range players {
		resp[i] = toTrackedPlayerResponse(&players[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) trackPlayer(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFrom(r.Context())

	var req trackRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err, trackingMessages)
		return
	}

	res, err := s.tracking.Track(r.Context(), id.SteamID, req.BrawlhallaID, req.PlayerName)
	if err != nil {
		s.fail(w, r, err, trackingMessages)
		return
	}

	msg := "Player tracked - click refresh to load rank"
	if res.HasRankData {
		msg = "Player tracked with rank data"
	}
	writeJSON(w, http.StatusCreated, trackResponse{
		Success:     true,
		Tracked:     toTrackedPlayerResponse(res.Player),
		HasRankData: res.HasRankData,
		Message:     msg,
	})
}

func (s *Server) untrackPlayer(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFrom(r.Context())

	playerID, err := s.playerParam(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}

	if err := s.tracking.Untrack(r.Context(), id.SteamID, playerID); err != nil {
		s.fail(w, r, err, trackingMessages)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Player untracked"})
}

func (s *Server) refreshPlayer(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFrom(r.Context())

	playerID, err := s.playerParam(r)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}

	res, err := s.tracking.Refresh(r.Context(), id.SteamID, playerID)
	if err != nil {
		s.fail(w, r, err, trackingMessages)
		return
	}

	msg := "No ranked data available"
	if res.Rating.Valid {
		msg = "Rank updated"
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		Success:     true,
		Rank:        res.Rank,
		Rating:      res.Rating,
		Changed:     res.Changed,
		Recorded:    res.Recorded,
		LastChecked: res.LastChecked,
		Message:     msg,
	})
}

func (s *Server) refreshAll(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFrom(r.Context())

	outcomes, err := s.tracking.RefreshAll(r.Context(), id.SteamID)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}

	resp := make([]refreshOutcomeResponse, len(outcomes))
	for i, o := range outcomes {
		resp[i] = refreshOutcomeResponse{
			BrawlhallaID: o.ExternalID,
			PlayerName:   o.DisplayName,
			Success:      o.Err == nil,
		}
		if o.Err != nil {
			resp[i].Error = defaultMessage(apperror.StatusCode(o.Err))
			continue
		}
		resp[i].Rank = o.Result.Rank
		resp[i].Rating = o.Result.Rating
		resp[i].Changed = o.Result.Changed
		resp[i].Recorded = o.Result.Recorded
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": resp})
}

// checkTracked never fails; unauthenticated callers track nothing.
func (s *Server) checkTracked(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFrom(r.Context())
	playerID, err := s.playerParam(r)
	if id == nil || err != nil {
		writeJSON(w, http.StatusOK, map[string]bool{"isTracked": false})
		return
	}

	tracked, err := s.tracking.IsTracked(r.Context(), id.SteamID, playerID)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("external_id", playerID).Msg("tracked check failed")
		tracked = false
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isTracked": tracked})
}
