// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"nutrilens/internal/foodfacts"
	"nutrilens/internal/nutrition"
	"nutrilens/internal/storage"
)

const (
	serverName = "nutrilens"
	// maxBodyBytes leaves room for a base64 encoded phone photo.
	maxBodyBytes = 20 << 20
)

var Version = "1.0.0"

type Config struct {
	Host string
	Port int
}

type NutriLensServer struct {
	info       protocol.Implementation
	httpServer *http.Server
	router     *mux.Router
	storage    *storage.SQLiteStorage
	analyzer   *nutrition.Analyzer
	foodFacts  *foodfacts.Client
	tools      map[string]toolHandler
	log        *zap.SugaredLogger
}

func NewNutriLensServer(cfg *Config, stor *storage.SQLiteStorage, analyzer *nutrition.Analyzer, foods *foodfacts.Client, log *zap.SugaredLogger) (*NutriLensServer, error) {
	s := &NutriLensServer{
		info:      protocol.Implementation{Name: serverName, Version: Version},
		storage:   stor,
		analyzer:  analyzer,
		foodFacts: foods,
		log:       log,
	}

	s.registerTools()
	s.router = s.routes()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s, nil
}

func (s *NutriLensServer) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.corsMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/analyze-image", s.apiAnalyzeImage).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/describe-meal", s.apiDescribeMeal).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/exercise-plan", s.apiExercisePlan).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/recommendations", s.apiRecommendations).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/barcode/{code}", s.apiBarcode).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/meals", s.apiListMeals).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/meals/{id}", s.apiGetMeal).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/meals/{id}", s.apiDeleteMeal).Methods(http.MethodDelete)

	r.HandleFunc("/", s.handleMCP).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/mcp", s.handleMCP).Methods(http.MethodPost, http.MethodOptions)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed", Code: "method_not_allowed"})
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found", Code: "not_found"})
	})

	return r
}

// Handler exposes the router for embedding and tests.
func (s *NutriLensServer) Handler() http.Handler {
	return s.router
}

func (s *NutriLensServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *NutriLensServer) handleMCP(w http.ResponseWriter, r *http.Request) {
	var request protocol.CallToolRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("Invalid JSON: %v", err), Code: "invalid_request"})
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: fmt.Sprintf("Unknown tool: %s", request.Name), Code: "unknown_tool"})
		return
	}

	result, err := handler(r.Context(), &request)
	if err != nil {
		s.writeError(w, err, "tool", request.Name)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *NutriLensServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": s.info.Name,
		"version": s.info.Version,
		"tools":   s.toolNames(),
	})
}

func (s *NutriLensServer) Start(ctx context.Context) error {
	s.log.Infow("starting nutrilens server", "addr", s.httpServer.Addr, "name", s.info.Name, "version", s.info.Version)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *NutriLensServer) Stop(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.storage != nil {
		if cerr := s.storage.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (s *NutriLensServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
