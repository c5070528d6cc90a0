// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/semcache"
	"github.com/poiesic/semcache/core"
)

// server exposes the system over HTTP.
type server struct {
	system *semcache.System
	logger *slog.Logger
}

func newServer(system *semcache.System, logger *slog.Logger) *server {
	return &server{
		system: system,
		logger: logger.With("component", "http"),
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /ingest", s.handleIngest)
	mux.HandleFunc("GET /ingest/{id}", s.handleJobStatus)
	mux.HandleFunc("POST /ingest/{documentId}/reingest", s.handleReingest)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// listenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *server) listenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

type chatRequest struct {
	Prompt string `json:"prompt"`
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	response, err := s.system.ProcessChat(r.Context(), req.Prompt)
	if err != nil {
		s.writeProcessingError(w, err)
		return
	}

	w.Header().Set("X-Cache-Status", string(response.CacheStatus))
	s.writeJSON(w, http.StatusOK, response)
}

type ingestRequest struct {
	DocumentID string `json:"documentId"`
	FileName   string `json:"fileName"`
	Content    string `json:"content"`
}

func (s *server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	jobID, err := s.system.Ingest(r.Context(), req.DocumentID, req.FileName, req.Content)
	if err != nil {
		s.writeProcessingError(w, err)
		return
	}

	s.writeAccepted(w, jobID)
}

func (s *server) handleReingest(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentId")

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	jobID, err := s.system.Reingest(r.Context(), documentID, req.FileName, req.Content)
	if err != nil {
		s.writeProcessingError(w, err)
		return
	}

	s.writeAccepted(w, jobID)
}

// writeAccepted responds with the job snapshot so callers see the initial
// status without a follow-up poll.
func (s *server) writeAccepted(w http.ResponseWriter, jobID string) {
	w.Header().Set("Location", "/ingest/"+jobID)
	if job, ok := s.system.GetJob(jobID); ok {
		s.writeJSON(w, http.StatusAccepted, job)
		return
	}
	// Evicted between submit and response; the id is still pollable
	s.writeJSON(w, http.StatusAccepted, &core.IngestJob{ID: jobID})
}

func (s *server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.system.GetJob(r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeProcessingError maps validation failures to 400 and everything else
// to 500.
func (s *server) writeProcessingError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrInvalidIngestRequest) || errors.Is(err, core.ErrInvalidPrompt) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error("request failed", "err", err)
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("error encoding response", "err", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}
