package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

func (that *Server) handleCreateGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	playerID, _ := args["player_id"].(string)
	username, _ := args["player_username"].(string)
	modeValue, _ := args["game_mode"].(string)

	if playerID == "" {
		return mcp.NewToolResultError("player_id is required"), nil
	}

	mode, err := entity.ParseMode(modeValue)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	session, err := that.manager.CreateSession(ctx, playerID, username, mode)
	if err != nil {
		return that.toolError("create_game", err), nil
	}

	return jsonResult(map[string]interface{}{
		"message":    "Game created",
		"game_state": session,
	})
}

func (that *Server) handleJoinGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)
	playerID, _ := args["player_id"].(string)
	username, _ := args["player_username"].(string)

	if gameID == "" || playerID == "" {
		return mcp.NewToolResultError("game_id and player_id are required"), nil
	}

	session, err := that.manager.JoinSession(ctx, gameID, playerID, username)
	if err != nil {
		return that.toolError("join_game", err), nil
	}

	return jsonResult(map[string]interface{}{
		"message":    "Joined game",
		"game_state": session,
	})
}

func (that *Server) handleMakeMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)
	playerID, _ := args["player_id"].(string)

	if gameID == "" || playerID == "" {
		return mcp.NewToolResultError("game_id and player_id are required"), nil
	}

	position, ok := intArgument(args["position"])
	if !ok {
		return mcp.NewToolResultError("position must be an integer between 0 and 8"), nil
	}

	result, err := that.manager.MakeMove(ctx, gameID, playerID, position)
	if err != nil {
		return that.toolError("make_move", err), nil
	}

	response := map[string]interface{}{
		"message":      "Move made",
		"game_state":   result.Session,
		"is_game_over": result.IsGameOver(),
		"winner":       result.Session.Winner,
		"ai_move":      nil,
	}

	if result.AIMove != nil {
		response["ai_move"] = map[string]int{"position": *result.AIMove}
	}

	return jsonResult(response)
}

func (that *Server) handleGetGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)

	if gameID == "" {
		return mcp.NewToolResultError("game_id is required"), nil
	}

	session, err := that.manager.GetSession(ctx, gameID)
	if err != nil {
		return that.toolError("get_game", err), nil
	}

	return jsonResult(map[string]interface{}{
		"game_state": session,
	})
}

func (that *Server) handleListGames(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := that.manager.ListSessions(ctx)
	if err != nil {
		return that.toolError("list_games", err), nil
	}

	return jsonResult(map[string]interface{}{
		"games":   result.Sessions,
		"skipped": result.Skipped,
	})
}

func (that *Server) handleAbandonGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)

	if gameID == "" {
		return mcp.NewToolResultError("game_id is required"), nil
	}

	session, err := that.manager.AbandonSession(ctx, gameID)
	if err != nil {
		return that.toolError("abandon_game", err), nil
	}

	return jsonResult(map[string]interface{}{
		"message":    "Game abandoned",
		"game_state": session,
	})
}

func (that *Server) handleDeleteGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	gameID, _ := args["game_id"].(string)

	if gameID == "" {
		return mcp.NewToolResultError("game_id is required"), nil
	}

	if err := that.manager.DeleteSession(ctx, gameID); err != nil {
		return that.toolError("delete_game", err), nil
	}

	return jsonResult(map[string]interface{}{
		"message": "Game deleted",
		"game_id": gameID,
	})
}

func (that *Server) toolError(tool string, err error) *mcp.CallToolResult {
	that.logger.Error("tool call failed", "tool", tool, "error", err)

	return mcp.NewToolResultError(err.Error())
}

func jsonResult(payload interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}

	return mcp.NewToolResultText(string(data)), nil
}

// intArgument - JSON numbers arrive as float64; fractions are rejected.
func intArgument(value interface{}) (int, bool) {
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}
