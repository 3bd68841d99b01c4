package handler

import (
	"net/http"

	"github.com/freeeve/trooper-tactics/api/internal/auth"
	"github.com/freeeve/trooper-tactics/api/internal/middleware"
)

// NewRouter wires the public, protected and WebSocket routes behind the
// global middleware chain.
func NewRouter(jwtMgr *auth.JWTManager, decisions *DecisionHandler, authH *AuthHandler, ws *WSHandler, allowedOrigins string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /auth/refresh", authH.RefreshToken)
	mux.HandleFunc("GET /auth/dev", authH.DevLogin)

	api := http.NewServeMux()
	api.HandleFunc("GET /params", decisions.Params)
	api.HandleFunc("POST /matches/{id}/decide", decisions.Decide)
	api.HandleFunc("GET /matches/{id}/decisions", decisions.ListDecisions)
	api.HandleFunc("POST /matches/{id}/finish", decisions.FinishMatch)
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", auth.Middleware(jwtMgr)(api)))

	// More specific than /api/v1/, so the upgrade skips the auth middleware
	// and validates the token itself.
	mux.HandleFunc("GET /api/v1/ws", ws.ServeWS)

	return middleware.Chain(mux, middleware.Logger, middleware.Recover, middleware.CORS(allowedOrigins), middleware.JSON)
}
