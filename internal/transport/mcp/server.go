// Package mcp exposes the game session operations as MCP tools, over HTTP or stdio.
package mcp

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/usecase"
)

const (
	serverName    = "Tic-Tac-Toe Sessions"
	serverVersion = "1.0.0"
)

const instructions = `Tic-Tac-Toe game sessions.

The board is 9 cells numbered 0-8, row by row. The creator of a game plays X and moves first.

AVAILABLE TOOLS:
- create_game: start a game, vs_human (waits for a second player) or vs_ai (starts at once)
- join_game: take the O seat in a waiting vs_human game
- make_move: place your mark; in vs_ai games the AI answers in the same call
- get_game: current state of a game
- list_games: every live game, newest first
- abandon_game: end a waiting or active game without a winner
- delete_game: remove a game for good`

type Server struct {
	logger    *slog.Logger
	manager   usecase.SessionManager
	mcpServer *server.MCPServer
}

func NewServer(logger *slog.Logger, manager usecase.SessionManager) *Server {
	s := &Server{
		logger:  logger.With("component", "mcp"),
		manager: manager,
		mcpServer: server.NewMCPServer(
			serverName,
			serverVersion,
			server.WithToolCapabilities(true),
			server.WithInstructions(instructions),
		),
	}

	s.registerTools()

	return s
}

func (that *Server) MCPServer() *server.MCPServer {
	return that.mcpServer
}

// ServeStdio - blocks serving JSON-RPC on stdin/stdout.
func (that *Server) ServeStdio() error {
	if err := server.ServeStdio(that.mcpServer); err != nil {
		return fmt.Errorf("mcp stdio server failed: %w", err)
	}

	return nil
}

// ServeHTTP - single JSON-RPC message per POST.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	response := that.mcpServer.HandleMessage(r.Context(), body)
	if response == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		log.Error("failed to marshal mcp response", "error", err)
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(responseData); err != nil {
		log.Error("failed to write mcp response", "error", err)
	}
}

func (that *Server) registerTools() {
	that.mcpServer.AddTool(mcp.Tool{
		Name:        "create_game",
		Description: "Create a new tic-tac-toe game. The creator plays X.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Id of the player creating the game",
				},
				"player_username": map[string]interface{}{
					"type":        "string",
					"description": "Display name of the creator (optional)",
				},
				"game_mode": map[string]interface{}{
					"type":        "string",
					"description": "vs_human or vs_ai (default vs_human)",
					"enum":        []string{string(entity.ModeVsHuman), string(entity.ModeVsAI)},
				},
			},
			Required: []string{"player_id"},
		},
	}, that.handleCreateGame)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "join_game",
		Description: "Join a waiting vs_human game as O",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game to join",
				},
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Id of the joining player",
				},
				"player_username": map[string]interface{}{
					"type":        "string",
					"description": "Display name of the joining player (optional)",
				},
			},
			Required: []string{"game_id", "player_id"},
		},
	}, that.handleJoinGame)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "make_move",
		Description: "Place your mark on a cell (0-8). In vs_ai games the AI replies in the same call.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game id",
				},
				"player_id": map[string]interface{}{
					"type":        "string",
					"description": "Id of the player whose turn it is",
				},
				"position": map[string]interface{}{
					"type":        "integer",
					"description": "Cell index, 0-8 row by row",
					"minimum":     0,
					"maximum":     entity.BoardSize - 1,
				},
			},
			Required: []string{"game_id", "player_id", "position"},
		},
	}, that.handleMakeMove)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "get_game",
		Description: "Get the current state of a game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game id",
				},
			},
			Required: []string{"game_id"},
		},
	}, that.handleGetGame)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List every live game, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, that.handleListGames)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "abandon_game",
		Description: "End a waiting or active game without a winner",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game id",
				},
			},
			Required: []string{"game_id"},
		},
	}, that.handleAbandonGame)

	that.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_game",
		Description: "Delete a game in any status",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"game_id": map[string]interface{}{
					"type":        "string",
					"description": "Game id",
				},
			},
			Required: []string{"game_id"},
		},
	}, that.handleDeleteGame)
}
