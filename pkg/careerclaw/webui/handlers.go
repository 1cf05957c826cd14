package webui

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jholhewres/careerclaw/pkg/careerclaw/copilot"
)

// chatRequest is the POST /api/chat body.
type chatRequest struct {
	Message string            `json:"message"`
	History []copilot.Message `json:"history"`
}

// chatResponse is the POST /api/chat reply.
type chatResponse struct {
	Reply string `json:"reply"`
}

// errorResponse is the consistent error format.
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

type pageData struct {
	Title    string
	Greeting string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, "not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := pageTemplate.Execute(w, pageData{
		Title:    s.assistant.Title(),
		Greeting: s.assistant.Greeting(),
	})
	if err != nil {
		s.logger.Error("rendering page", "error", err)
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		writeError(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, "message is required", http.StatusBadRequest)
		return
	}

	reply, err := s.assistant.Answer(r.Context(), req.Message, req.History)
	if err != nil {
		s.logger.Error("chat failed",
			"request_id", RequestIDFromContext(r.Context()),
			"error", err,
		)
		writeError(w, "the assistant could not answer right now, please try again", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":         s.assistant.Name(),
		"greeting":     s.assistant.Greeting(),
		"repositories": nonNil(s.assistant.Repositories()),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	uptime := time.Since(s.startedAt).Round(time.Second).String()
	if uptime == "0s" {
		uptime = "<1s"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"uptime":       uptime,
		"repositories": len(s.assistant.Repositories()),
	})
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func writeError(w http.ResponseWriter, msg string, code int) {
	var resp errorResponse
	resp.Error.Message = msg
	resp.Error.Code = code
	writeJSON(w, code, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
