package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/zan8in/gologger"
)

// POST /api/login
func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	// 限制请求体大小
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)

	if ct := r.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Content-Type must be application/json"})
		return
	}

	var loginReq LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid JSON body"})
		return
	}

	// 常量时间比较
	if subtle.ConstantTimeCompare([]byte(loginReq.Password), []byte(s.password)) != 1 {
		gologger.Warning().Str("ip", getClientIP(r)).Msg("login failed")
		writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "wrong password"})
		return
	}

	token, expires, err := generateJWTToken(s.jwtSecret, "admin")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Message: "failed to generate token"})
		return
	}

	gologger.Info().Str("ip", getClientIP(r)).Msg("login succeeded")
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "ok", Data: LoginData{Token: token, Expires: expires}})
}

// POST /api/scans
func (s *Server) scanCreateHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)

	var req CreateScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "invalid request body"})
		return
	}

	task, err := s.tasks.CreateTask(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: err.Error()})
		gologger.Error().Msgf("CreateTask: failed: %v", err)
		return
	}
	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Message: "created", Data: map[string]string{"id": task.ID}})
}

// GET /api/scans
func (s *Server) scanListHandler(w http.ResponseWriter, r *http.Request) {
	tasks := s.tasks.List()
	items := make([]ScanData, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, t.Data(false))
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "ok", Data: items})
}

// GET /api/scans/{id}
func (s *Server) scanGetHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookupTask(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "ok", Data: t.Data(true)})
}

// POST /api/scans/{id}/stop
func (s *Server) scanStopHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	t, err := s.tasks.Stop(strings.TrimSpace(vars["id"]))
	if err != nil {
		writeJSON(w, http.StatusNotFound, APIResponse{Success: false, Message: err.Error()})
		return
	}
	// 取消后扫描会很快返回
	t.Wait(5 * time.Second)
	gologger.Info().Str("user_id", GetUserIDFromContext(r)).Msgf("Task stop requested: task_id=%s", t.ID)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "stopped", Data: t.Data(false)})
}

// GET /api/monitor
func (s *Server) monitorHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Message: "ok", Data: s.monitor.Stats()})
}

func (s *Server) lookupTask(w http.ResponseWriter, r *http.Request) (*Task, bool) {
	vars := mux.Vars(r)
	t, err := s.tasks.Get(strings.TrimSpace(vars["id"]))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrTaskNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, APIResponse{Success: false, Message: err.Error()})
		return nil, false
	}
	return t, true
}
