package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"wikirace/internal/bot"
	"wikirace/internal/hub"
	"wikirace/internal/progression"
	"wikirace/internal/session"
	"wikirace/internal/store"
)

type Server struct {
	Session    *session.Session
	Engine     *progression.Engine
	Dispatcher *bot.Dispatcher
	Hub        *hub.Hub
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Handle] Encode error: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"spectators": s.Hub.Count(),
		"session":    s.Session.State().String(),
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort")
	standings, err := s.Engine.Leaderboard(sortBy)
	if err != nil {
		log.Printf("[Handle:Leaderboard] %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to load leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sort":      sortBy,
		"standings": standings,
	})
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	rec, err := s.Engine.GetPlayer(name)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	if err != nil {
		log.Printf("[Handle:Player] %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to load player")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":   name,
		"record": rec,
		"tier":   progression.TierForLevel(rec.Level),
	})
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"achievements": s.Engine.Achievements(),
	})
}

func (s *Server) handlePlayerAchievements(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	status, err := s.Engine.AchievementStatus(name)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	if err != nil {
		log.Printf("[Handle:PlayerAchievements] %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to load achievements")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":         name,
		"achievements": status,
	})
}

func (s *Server) handleDeletePlayer(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	deleted, err := s.Engine.DeletePlayer(name)
	if err != nil {
		log.Printf("[Handle:DeletePlayer] %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to delete player")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": name})
}

// signalRequest is the wire form of a dispatcher signal, posted by chat
// adapters.
type signalRequest struct {
	Kind      string   `json:"kind"`
	Actor     string   `json:"actor,omitempty"`
	ChannelID string   `json:"channel_id,omitempty"`
	Members   []string `json:"members,omitempty"`
	Ranked    bool     `json:"ranked,omitempty"`
	Clicks    int      `json:"clicks,omitempty"`
	Name      string   `json:"name,omitempty"`
	SortBy    string   `json:"sort,omitempty"`
	PromptID  string   `json:"prompt_id,omitempty"`
	Confirmed bool     `json:"confirmed,omitempty"`
}

var signalKinds = map[string]bot.SignalKind{
	"start_match":    bot.SignalStartMatch,
	"generate_path":  bot.SignalGeneratePath,
	"start_round":    bot.SignalStartRound,
	"cancel_round":   bot.SignalCancelRound,
	"finish_round":   bot.SignalFinishRound,
	"confirm_win":    bot.SignalConfirmWin,
	"stats":          bot.SignalStats,
	"leaderboard":    bot.SignalLeaderboard,
	"achievements":   bot.SignalAchievements,
	"summary":        bot.SignalSummary,
	"member_left":    bot.SignalMemberLeft,
	"disband":        bot.SignalDisband,
	"resolve_prompt": bot.SignalResolvePrompt,
}

func (s *Server) handleSignal(w http.ResponseWriter, r *http.Request) {
	var req signalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid signal body")
		return
	}
	kind, ok := signalKinds[req.Kind]
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown signal kind")
		return
	}

	sig := bot.Signal{
		Kind:      kind,
		Actor:     req.Actor,
		ChannelID: req.ChannelID,
		Members:   req.Members,
		Ranked:    req.Ranked,
		Clicks:    req.Clicks,
		Name:      req.Name,
		SortBy:    req.SortBy,
		Confirmed: req.Confirmed,
	}
	if req.PromptID != "" {
		id, err := uuid.Parse(req.PromptID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid prompt id")
			return
		}
		sig.PromptID = id
	}

	s.Dispatcher.Send(sig)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// handleWS upgrades the connection and streams dispatcher events until the
// client disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("[Handle:WS] Accept error: %v\n", err)
		return
	}

	client := hub.NewClient(conn)
	s.Hub.Register(client)
	defer s.Hub.Unregister(client.ID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		// Spectators send nothing; the read loop only detects disconnects.
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				cancel()
				return
			}
		}
	}()

	client.WritePump(ctx)
	conn.Close(websocket.StatusNormalClosure, "")
}
