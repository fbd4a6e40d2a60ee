package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	governanceengine "condogov/contexts/assembly-governance/governance-engine"
	_ "condogov/internal/platform/httpserver/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

const governancePrefix = "/api/governance/v1"

type Server struct {
	mux        *http.ServeMux
	httpServer *http.Server
	logger     *slog.Logger
	addr       string
	governance governanceengine.Module
}

func New(
	governance governanceengine.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		governance: governance,
	}
	s.registerRoutes()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start blocks until the server stops. A graceful Shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", "internal/platform/httpserver",
		"layer", "platform",
	)
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST "+governancePrefix+"/meetings", s.handleCreateMeeting)
	s.mux.HandleFunc("GET "+governancePrefix+"/meetings/{meeting_id}", s.handleGetMeeting)
	s.mux.HandleFunc("GET "+governancePrefix+"/meetings/{meeting_id}/gates", s.handleMeetingGates)
	s.mux.HandleFunc("GET "+governancePrefix+"/meetings/{meeting_id}/proxy-caps", s.handleMeetingProxyCaps)
	s.mux.HandleFunc("POST "+governancePrefix+"/meetings/{meeting_id}/attendances", s.handleAddAttendance)
	s.mux.HandleFunc("POST "+governancePrefix+"/meetings/{meeting_id}/quorum", s.handleEvaluateQuorum)
	s.mux.HandleFunc("POST "+governancePrefix+"/meetings/{meeting_id}/proxies", s.handleGrantProxies)
	s.mux.HandleFunc("POST "+governancePrefix+"/meetings/{meeting_id}/proxies/preview", s.handlePreviewProxies)
	s.mux.HandleFunc("POST "+governancePrefix+"/meetings/{meeting_id}/agenda-items", s.handleAddAgendaItem)
	s.mux.HandleFunc("POST "+governancePrefix+"/meetings/{meeting_id}/documents", s.handleAddDocument)
	s.mux.HandleFunc("POST "+governancePrefix+"/meetings/{meeting_id}/decisions", s.handleCreateDecision)
	s.mux.HandleFunc("POST "+governancePrefix+"/meetings/{meeting_id}/complete", s.handleCompleteMeeting)
	s.mux.HandleFunc("POST "+governancePrefix+"/meetings/{meeting_id}/minutes", s.handleCompileMinutes)
	s.mux.HandleFunc("POST "+governancePrefix+"/decisions/{decision_id}/votes", s.handleCastVotes)
	s.mux.HandleFunc("PUT "+governancePrefix+"/decisions/{decision_id}/text", s.handleSetDecisionText)
	s.mux.HandleFunc("GET "+governancePrefix+"/proxy-caps", s.handleProxyCaps)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
