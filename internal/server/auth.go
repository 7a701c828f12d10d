package server

import (
	"net/http"

	"rank-tracker/internal/auth"

	"github.com/rs/zerolog"
)

type linkRequest struct {
	BrawlhallaID string `json:"brawlhallaId" validate:"required,numeric,max=20"`
}

type userResponse struct {
	Authenticated bool    `json:"authenticated"`
	SteamID       string  `json:"steamId,omitempty"`
	DisplayName   string  `json:"displayName,omitempty"`
	Avatar        string  `json:"avatar,omitempty"`
	BrawlhallaID  *string `json:"brawlhallaId"`
}

type linkResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	BrawlhallaID string `json:"brawlhallaId"`
}

var linkMessages = map[int]string{
	http.StatusBadRequest: "Brawlhalla ID required",
	http.StatusNotFound:   "Brawlhalla player not found",
}

func (s *Server) steamLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.steam.LoginURL(), http.StatusFound)
}

func (s *Server) steamReturn(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	steamID, err := s.steam.Verify(r.Context(), r.URL.Query())
	if err != nil {
		log.Warn().Err(err).Msg("steam login failed")
		http.Redirect(w, r, s.cfg.ClientURL, http.StatusFound)
		return
	}

	id := s.profiles.Resolve(r.Context(), steamID)
	if _, err := s.users.Login(r.Context(), id.SteamID, id.DisplayName, id.Avatar); err != nil {
		log.Error().Err(err).Str("steam_id", steamID).Msg("failed to record login")
		http.Redirect(w, r, s.cfg.ClientURL, http.StatusFound)
		return
	}

	token, err := s.sessions.Issue(id)
	if err != nil {
		log.Error().Err(err).Msg("failed to issue session")
		http.Redirect(w, r, s.cfg.ClientURL, http.StatusFound)
		return
	}
	s.sessions.SetCookie(w, token)

	log.Info().Str("steam_id", steamID).Msg("user logged in")
	http.Redirect(w, r, s.cfg.ClientURL+"/auth/success", http.StatusFound)
}

func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFrom(r.Context())
	if id == nil {
		writeJSON(w, http.StatusOK, userResponse{Authenticated: false})
		return
	}

	user, err := s.users.Profile(r.Context(), id.SteamID)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to load user profile")
		writeJSON(w, http.StatusOK, userResponse{Authenticated: false})
		return
	}

	resp := userResponse{
		Authenticated: true,
		SteamID:       id.SteamID,
		DisplayName:   id.DisplayName,
		Avatar:        id.Avatar,
	}
	if user.DisplayName != "" {
		resp.DisplayName = user.DisplayName
	}
	if user.Avatar != "" {
		resp.Avatar = user.Avatar
	}
	if user.BrawlhallaID != "" {
		resp.BrawlhallaID = &user.BrawlhallaID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.sessions.ClearCookie(w)
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Logged out successfully"})
}

func (s *Server) linkBrawlhalla(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFrom(r.Context())

	var req linkRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err, linkMessages)
		return
	}

	if _, err := s.users.Link(r.Context(), id.SteamID, req.BrawlhallaID); err != nil {
		s.fail(w, r, err, linkMessages)
		return
	}
	writeJSON(w, http.StatusOK, linkResponse{
		Success:      true,
		Message:      "Brawlhalla account linked successfully",
		BrawlhallaID: req.BrawlhallaID,
	})
}

func (s *Server) unlinkBrawlhalla(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFrom(r.Context())

	if _, err := s.users.Unlink(r.Context(), id.SteamID); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Brawlhalla account unlinked"})
}
