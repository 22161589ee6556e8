package supportbot

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apiv1 "github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/api/v1"
	apperrors "github.com/manaswini1869/cf-ai-supportbot-manaswini-spring-2026/pkg/supportbot/errors"
)

const maxBodyBytes = 1 << 20

func (a *App) setupRoutes() {
	// Health check endpoint
	a.router.HandleFunc("/", a.handleHealth).Methods(http.MethodGet)

	a.router.Handle("/api/chat", a.rateLimited(http.HandlerFunc(a.handleChat))).Methods(http.MethodPost)

	a.router.HandleFunc("/api/sessions/{id}/history", a.handleHistory).Methods(http.MethodGet)
	a.router.HandleFunc("/api/sessions/{id}/history", a.handleReset).Methods(http.MethodDelete)
	a.router.HandleFunc("/api/sessions/{id}/clear", a.handleReset).Methods(http.MethodPost)

	if a.Config.Metrics.Enabled {
		a.router.Handle(a.Config.Metrics.Path, promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	a.router.NotFoundHandler = http.HandlerFunc(handleNotFound)
	a.router.MethodNotAllowedHandler = http.HandlerFunc(handleNotFound)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(HealthText))
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("Not found"))
}

func (a *App) handleChat(w http.ResponseWriter, r *http.Request) {
	var req apiv1.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		// 400 is reserved for missing fields.
		a.requestLog(r).Error(err, "Failed to decode chat request")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	reply, err := a.Orchestrator.HandleChat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		a.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, apiv1.ChatResponse{
		Reply: reply.Text,
		Meta:  apiv1.ChatMeta{ModelID: reply.ModelID},
	})
}

func (a *App) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	turns, err := a.Orchestrator.History(r.Context(), id)
	if err != nil {
		a.writeAppError(w, r, err)
		return
	}
	history := make([]apiv1.Turn, 0, len(turns))
	for _, t := range turns {
		history = append(history, apiv1.Turn{Role: string(t.Role), Content: t.Content, CreatedAt: t.CreatedAt})
	}
	writeJSON(w, http.StatusOK, apiv1.HistoryResponse{SessionID: id, History: history})
}

func (a *App) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := a.Orchestrator.Reset(r.Context(), mux.Vars(r)["id"]); err != nil {
		a.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apiv1.OKResponse{OK: true})
}

// writeAppError maps INVALID_REQUEST to 400 and every other failure to 500.
func (a *App) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if !stderrors.As(err, &appErr) {
		a.requestLog(r).Error(err, "Unhandled error")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if appErr.Code == apperrors.ErrCodeInvalidRequest {
		writeError(w, http.StatusBadRequest, appErr.Message)
		return
	}
	writeError(w, http.StatusInternalServerError, appErr.Message)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, apiv1.ErrorResponse{Error: msg})
}
