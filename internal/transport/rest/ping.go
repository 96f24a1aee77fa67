package rest

import "net/http"

const serviceName = "tictactoe-sessions"

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Message string `json:"message"`
}

func (that *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// handleHealth - always 200; a failing store reports "degraded".
func (that *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := healthResponse{
		Status:  "healthy",
		Service: serviceName,
		Message: "storage is reachable",
	}

	if err := that.manager.Health(r.Context()); err != nil {
		that.logger.Warn("health check failed", "error", err)

		response.Status = "degraded"
		response.Message = err.Error()
	}

	that.respondJSON(w, http.StatusOK, response)
}
