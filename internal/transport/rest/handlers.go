package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

// Request ids and names are replaced by the logged-in user when X-Session-Id is sent.
type createGameRequest struct {
	CreatedBy         string `json:"created_by"`
	CreatedByUsername string `json:"created_by_username"`
	GameMode          string `json:"game_mode"`
}

type joinGameRequest struct {
	PlayerID       string `json:"player_id"`
	PlayerUsername string `json:"player_username"`
}

type moveRequest struct {
	PlayerID string `json:"player_id"`
	Position *int   `json:"position"`
}

type gameResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	GameState *entity.Session `json:"game_state"`
}

type aiMove struct {
	Position int `json:"position"`
}

type moveResponse struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	GameState  *entity.Session `json:"game_state"`
	IsGameOver bool            `json:"is_game_over"`
	Winner     entity.Winner   `json:"winner"`
	AIMove     *aiMove         `json:"ai_move"`
}

type listResponse struct {
	Success bool              `json:"success"`
	Games   []*entity.Session `json:"games"`
	Skipped int               `json:"skipped"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}

	return nil
}

func (that *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeBody(r, &req); err != nil {
		that.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if user := userFromContext(r.Context()); user != nil {
		req.CreatedBy, req.CreatedByUsername = user.ID, user.Username
	}

	if req.CreatedBy == "" {
		that.respondError(w, http.StatusBadRequest, "created_by is required")
		return
	}

	mode, err := entity.ParseMode(req.GameMode)
	if err != nil {
		that.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := that.manager.CreateSession(r.Context(), req.CreatedBy, req.CreatedByUsername, mode)
	if err != nil {
		that.respondAppError(w, "handleCreateGame", err)
		return
	}

	that.respondJSON(w, http.StatusOK, gameResponse{
		Success:   true,
		Message:   "Game created successfully",
		GameState: session,
	})
}

func (that *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var req joinGameRequest
	if err := decodeBody(r, &req); err != nil {
		that.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if user := userFromContext(r.Context()); user != nil {
		req.PlayerID, req.PlayerUsername = user.ID, user.Username
	}

	if req.PlayerID == "" {
		that.respondError(w, http.StatusBadRequest, "player_id is required")
		return
	}

	session, err := that.manager.JoinSession(r.Context(), gameID, req.PlayerID, req.PlayerUsername)
	if err != nil {
		that.respondAppError(w, "handleJoinGame", err)
		return
	}

	that.respondJSON(w, http.StatusOK, gameResponse{
		Success:   true,
		Message:   "Joined game successfully",
		GameState: session,
	})
}

func (that *Server) handleMakeMove(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	var req moveRequest
	if err := decodeBody(r, &req); err != nil {
		that.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if user := userFromContext(r.Context()); user != nil {
		req.PlayerID = user.ID
	}

	if req.PlayerID == "" || req.Position == nil {
		that.respondError(w, http.StatusBadRequest, "player_id and position are required")
		return
	}

	if *req.Position < 0 || *req.Position >= entity.BoardSize {
		that.respondError(w, http.StatusBadRequest, fmt.Sprintf("position must be between 0 and %d", entity.BoardSize-1))
		return
	}

	result, err := that.manager.MakeMove(r.Context(), gameID, req.PlayerID, *req.Position)
	if err != nil {
		that.respondAppError(w, "handleMakeMove", err)
		return
	}

	response := moveResponse{
		Success:    true,
		Message:    "Move made successfully",
		GameState:  result.Session,
		IsGameOver: result.IsGameOver(),
		Winner:     result.Session.Winner,
	}

	if result.AIMove != nil {
		response.AIMove = &aiMove{Position: *result.AIMove}
	}

	that.respondJSON(w, http.StatusOK, response)
}

func (that *Server) handleAbandonGame(w http.ResponseWriter, r *http.Request) {
	session, err := that.manager.AbandonSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		that.respondAppError(w, "handleAbandonGame", err)
		return
	}

	that.respondJSON(w, http.StatusOK, gameResponse{
		Success:   true,
		Message:   "Game abandoned",
		GameState: session,
	})
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	session, err := that.manager.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		that.respondAppError(w, "handleGetGame", err)
		return
	}

	that.respondJSON(w, http.StatusOK, gameResponse{
		Success:   true,
		Message:   "Game state retrieved",
		GameState: session,
	})
}

func (that *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	result, err := that.manager.ListSessions(r.Context())
	if err != nil {
		that.respondAppError(w, "handleListGames", err)
		return
	}

	games := result.Sessions
	if games == nil {
		games = []*entity.Session{}
	}

	that.respondJSON(w, http.StatusOK, listResponse{
		Success: true,
		Games:   games,
		Skipped: result.Skipped,
	})
}

func (that *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := that.manager.DeleteSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		that.respondAppError(w, "handleDeleteGame", err)
		return
	}

	that.respondJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Game deleted",
	})
}

// handleWebSocket - 404s unknown games before upgrading.
func (that *Server) handleWebSocket(w http.ResponseWriter, r *http.Request, subscriber Subscriber) {
	session, err := that.manager.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		that.respondAppError(w, "handleWebSocket", err)
		return
	}

	subscriber.ServeWS(w, r, session)
}
