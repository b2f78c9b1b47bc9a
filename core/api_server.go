package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// APIServer exposes the orchestrator's task-lifecycle operations over HTTP.
type APIServer struct {
	orchestrator *Orchestrator
	router       *mux.Router
	startTime    time.Time
}

// NewAPIServer creates an HTTP front end for an orchestrator.
func NewAPIServer(orchestrator *Orchestrator) *APIServer {
	server := &APIServer{
		orchestrator: orchestrator,
		router:       mux.NewRouter(),
		startTime:    time.Now(),
	}
	server.setupRoutes()
	return server
}

func (s *APIServer) setupRoutes() {
	// Agent registry
	s.router.HandleFunc("/api/v1/agents", s.handleRegisterAgent).Methods("POST")
	s.router.HandleFunc("/api/v1/agents", s.handleListAgents).Methods("GET")
	s.router.HandleFunc("/api/v1/agents/{agentId}", s.handleGetAgent).Methods("GET")

	// Task lifecycle
	s.router.HandleFunc("/api/v1/tasks", s.handleCreateTask).Methods("POST")
	s.router.HandleFunc("/api/v1/tasks/{taskId}", s.handleGetTask).Methods("GET")
	s.router.HandleFunc("/api/v1/tasks/{taskId}/execute", s.handleExecuteTask).Methods("POST")

	// System
	s.router.HandleFunc("/api/v1/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/v1/agents/{agentId}/health", s.handleAgentHealth).Methods("GET")

	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.recoveryMiddleware)
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *APIServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start starts the HTTP server with CORS enabled.
func (s *APIServer) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	log.Printf("[APIServer] Starting server on %s", addr)
	return http.ListenAndServe(addr, cors.AllowAll().Handler(s.router))
}

func (s *APIServer) handleRegisterAgent(w http.ResponseWriter, r *http.Request) {
	var req RegisterAgentRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if req.PrimaryEndpoint == "" {
		s.sendError(w, http.StatusBadRequest, "primary_endpoint is required")
		return
	}

	agentID, err := s.orchestrator.Registry().Register(AgentConfig{
		AgentID:           req.AgentID,
		Name:              req.Name,
		Role:              req.Role,
		PrimaryEndpoint:   req.PrimaryEndpoint,
		PrimaryCredential: req.PrimaryCredential,
		BackupEndpoint:    req.BackupEndpoint,
		BackupCredential:  req.BackupCredential,
		Weight:            req.Weight,
		Timeout:           req.Timeout.ToDuration(),
	})
	if err != nil {
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.sendJSON(w, http.StatusCreated, RegisterAgentResponse{AgentID: agentID})
}

func (s *APIServer) handleListAgents(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, s.orchestrator.Registry().List())
}

func (s *APIServer) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	agentID := mux.Vars(r)["agentId"]
	cfg, err := s.orchestrator.Registry().Get(agentID)
	if err != nil {
		s.sendError(w, http.StatusNotFound, err.Error())
		return
	}
	s.sendJSON(w, http.StatusOK, cfg)
}

func (s *APIServer) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if req.Description == "" {
		s.sendError(w, http.StatusBadRequest, "description is required")
		return
	}

	var consensus *ConsensusConfig
	if req.Consensus != nil {
		consensus = &ConsensusConfig{
			Strategy:  req.Consensus.Strategy,
			Threshold: req.Consensus.Threshold,
			Timeout:   req.Consensus.Timeout.ToDuration(),
		}
	}

	taskID, err := s.orchestrator.CreateTask(req.Description, req.Context, req.AgentIDs, consensus)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrAgentNotFound) {
			status = http.StatusNotFound
		}
		s.sendError(w, status, err.Error())
		return
	}
	s.sendJSON(w, http.StatusCreated, CreateTaskResponse{TaskID: taskID, Status: TaskCreated})
}

// handleExecuteTask runs the task to completion and returns its consensus
// result. Agent-level failures are absorbed upstream; the only error paths
// here are an unknown task ID or a concurrent execute on the same task.
func (s *APIServer) handleExecuteTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]
	result, err := s.orchestrator.ExecuteTask(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			s.sendError(w, http.StatusNotFound, err.Error())
			return
		}
		s.sendError(w, http.StatusConflict, err.Error())
		return
	}
	s.sendJSON(w, http.StatusOK, result)
}

func (s *APIServer) handleGetTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]
	status, result, err := s.orchestrator.TaskState(taskID)
	if err != nil {
		s.sendError(w, http.StatusNotFound, err.Error())
		return
	}
	s.sendJSON(w, http.StatusOK, TaskStatusResponse{
		TaskID: taskID,
		Status: status,
		Result: result,
	})
}

func (s *APIServer) handleAgentHealth(w http.ResponseWriter, r *http.Request) {
	agentID := mux.Vars(r)["agentId"]
	if _, err := s.orchestrator.Registry().Get(agentID); err != nil {
		s.sendError(w, http.StatusNotFound, err.Error())
		return
	}
	health, err := s.orchestrator.Health().Get(agentID)
	if err != nil {
		// Registered but never dispatched to.
		health = AgentHealth{AgentID: agentID, Status: "unknown"}
	}
	s.sendJSON(w, http.StatusOK, health)
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		AgentCount:    len(s.orchestrator.Registry().List()),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	})
}

func (s *APIServer) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[APIServer] Error marshaling JSON response: %v", err)
		w.Write([]byte(`{"error":"Failed to encode response"}`))
		return
	}
	if _, err := w.Write(jsonData); err != nil {
		log.Printf("[APIServer] Error writing JSON response: %v", err)
	}
}

func (s *APIServer) sendError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	jsonData, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		log.Printf("[APIServer] Error marshaling error response: %v", err)
		w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}
	if _, err := w.Write(jsonData); err != nil {
		log.Printf("[APIServer] Error writing error response: %v", err)
	}
}

func (s *APIServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[APIServer] %s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func (s *APIServer) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[APIServer] Panic recovered: %v", err)
				s.sendError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
