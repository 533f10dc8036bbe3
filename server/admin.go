package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// 管理端公告的限流：平均每秒一条，突发 3 条
var announceLimiter = rate.NewLimiter(rate.Every(time.Second), 3)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// HandleHealthz 存活探针
// GET /healthz
func (s *Server) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.done:
		http.Error(w, "stopped", http.StatusServiceUnavailable)
	default:
		_, _ = w.Write([]byte("ok"))
	}
}

// HandleMetrics 输出运行指标
// GET /metrics
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"addr":    s.Addr(),
		"metrics": s.metrics.Snapshot(),
	})
}

// HandleAdminConfig 返回当前服务器配置（只读；修改需重启）
// GET /admin/config
func (s *Server) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cfg := s.cfg
	writeJSON(w, http.StatusOK, map[string]any{
		"addr":           cfg.Addr,
		"adminAddr":      cfg.AdminAddr,
		"maxPlayers":     cfg.MaxPlayers,
		"tickHz":         cfg.TickHz,
		"clientTimeout":  cfg.ClientTimeout.String(),
		"loopSleep":      cfg.LoopSleep.String(),
		"pickupInterval": cfg.PickupInterval.String(),
		"spawn":          cfg.Spawn,
		"worldWidth":     cfg.WorldWidth,
		"worldHeight":    cfg.WorldHeight,
	})
}

// HandleAdminStatus 由工作协程生成的连接与角色快照
// GET /admin/status
func (s *Server) HandleAdminStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	st, err := s.Status(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleAdminBroadcast 向所有客户端发送公告
// POST /admin/broadcast {"message": "..."}
func (s *Server) HandleAdminBroadcast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 8<<10)).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	msg := strings.TrimSpace(body.Message)
	if msg == "" {
		http.Error(w, "empty message", http.StatusBadRequest)
		return
	}
	if !announceLimiter.Allow() {
		http.Error(w, "too many broadcasts", http.StatusTooManyRequests)
		return
	}
	if err := s.Announce(msg); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

// Routes 注册管理与观战接口
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.HandleHealthz)
	mux.HandleFunc("/metrics", s.HandleMetrics)
	mux.HandleFunc("/admin/config", s.HandleAdminConfig)
	mux.HandleFunc("/admin/status", s.HandleAdminStatus)
	mux.HandleFunc("/admin/broadcast", s.HandleAdminBroadcast)
	mux.HandleFunc("/ws/spectate", s.HandleSpectate)
}
