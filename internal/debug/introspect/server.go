package introspect

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"runtime"
	"sync"
	"time"

	"github.com/dep2p/go-chatnet/internal/core/connmgr"
	"github.com/dep2p/go-chatnet/internal/core/reconnect"
	"github.com/dep2p/go-chatnet/pkg/lib/log"
)

var logger = log.Logger("debug/introspect")

// DefaultAddr 默认监听地址
const DefaultAddr = "127.0.0.1:6060"

// RouteSource 提供各路由的管理器
type RouteSource interface {
	Routes() []*connmgr.SingleRouteManager
}

// ServiceSource 提供重连服务状态
type ServiceSource interface {
	Name() string
	State() reconnect.State
}

// Config 服务配置
type Config struct {
	// Addr 监听地址，默认 "127.0.0.1:6060"
	Addr string

	// Routes 可选的路由来源
	Routes RouteSource

	// Service 可选的服务来源
	Service ServiceSource
}

// Server 本地自省 HTTP 服务
type Server struct {
	config Config

	server    *http.Server
	listener  net.Listener
	startTime time.Time

	running bool
	mu      sync.Mutex
}

// New 创建自省服务
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	return &Server{config: cfg}
}

// Start 启动服务
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("自省服务异常退出", "err", err)
		}
	}()

	s.running = true
	s.startTime = time.Now()
	logger.Info("自省服务已启动", "addr", listener.Addr().String())
	return nil
}

// Stop 停止服务
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		logger.Error("关闭自省服务失败", "err", err)
		return err
	}

	s.running = false
	logger.Info("自省服务已停止")
	return nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// Handler 返回路由表
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /debug/introspect", s.handleIntrospect)
	mux.HandleFunc("GET /debug/introspect/service", s.handleService)
	mux.HandleFunc("GET /debug/introspect/routes", s.handleRoutes)
	mux.HandleFunc("GET /debug/introspect/runtime", s.handleRuntime)

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// ============================================================================
//                              响应结构
// ============================================================================

// IntrospectResponse 完整诊断响应
type IntrospectResponse struct {
	Timestamp time.Time    `json:"timestamp"`
	Uptime    string       `json:"uptime"`
	Service   *ServiceInfo `json:"service,omitempty"`
	Routes    []RouteInfo  `json:"routes,omitempty"`
	Runtime   *RuntimeInfo `json:"runtime,omitempty"`
}

// ServiceInfo 重连服务状态
type ServiceInfo struct {
	Name          string       `json:"name"`
	State         string       `json:"state"`
	Session       *SessionInfo `json:"session,omitempty"`
	CooldownUntil *time.Time   `json:"cooldown_until,omitempty"`
	Error         string       `json:"error,omitempty"`
}

// SessionInfo 活动会话的连接信息
type SessionInfo struct {
	Route     string `json:"route"`
	DNSSource string `json:"dns_source"`
	Address   string `json:"address"`
	IPType    string `json:"ip_type"`
}

// RouteInfo 单条路由的节流状态
type RouteInfo struct {
	Route               string     `json:"route"`
	SNI                 string     `json:"sni"`
	Host                string     `json:"host"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastAttempt         *time.Time `json:"last_attempt,omitempty"`
	CooldownUntil       *time.Time `json:"cooldown_until,omitempty"`
}

// RuntimeInfo 运行时信息
type RuntimeInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	NumCPU       int    `json:"num_cpu"`
	MemAlloc     uint64 `json:"mem_alloc"`
	MemSys       uint64 `json:"mem_sys"`
	NumGC        uint32 `json:"num_gc"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime,omitempty"`
}

// ============================================================================
//                              HTTP 处理器
// ============================================================================

func (s *Server) handleIntrospect(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, IntrospectResponse{
		Timestamp: time.Now(),
		Uptime:    s.uptime(),
		Service:   s.collectServiceInfo(),
		Routes:    s.collectRouteInfo(),
		Runtime:   collectRuntimeInfo(),
	})
}

func (s *Server) handleService(w http.ResponseWriter, _ *http.Request) {
	info := s.collectServiceInfo()
	if info == nil {
		http.Error(w, "Service info not available", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, info)
}

func (s *Server) handleRoutes(w http.ResponseWriter, _ *http.Request) {
	routes := s.collectRouteInfo()
	if routes == nil {
		routes = []RouteInfo{}
	}
	s.writeJSON(w, routes)
}

func (s *Server) handleRuntime(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, collectRuntimeInfo())
}

// handleHealth 服务处于 Active 时为 ok，其余为 degraded
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Uptime:    s.uptime(),
	}
	if s.config.Service == nil || s.config.Service.State().Kind != reconnect.StateActive {
		health.Status = "degraded"
	}
	s.writeJSON(w, health)
}

// ============================================================================
//                              数据收集
// ============================================================================

func (s *Server) collectServiceInfo() *ServiceInfo {
	if s.config.Service == nil {
		return nil
	}
	st := s.config.Service.State()
	info := &ServiceInfo{
		Name:  s.config.Service.Name(),
		State: st.Kind.String(),
	}
	switch st.Kind {
	case reconnect.StateActive:
		ci := st.Session.Info()
		info.Session = &SessionInfo{
			Route:     ci.RouteType.String(),
			DNSSource: ci.DNSSource.String(),
			Address:   ci.Address.String(),
			IPType:    ci.IPType().String(),
		}
	case reconnect.StateCooldown:
		until := st.Until
		info.CooldownUntil = &until
	}
	if st.Err != nil {
		info.Error = st.Err.Error()
	}
	return info
}

func (s *Server) collectRouteInfo() []RouteInfo {
	if s.config.Routes == nil {
		return nil
	}
	routes := s.config.Routes.Routes()
	out := make([]RouteInfo, 0, len(routes))
	for _, r := range routes {
		p, st := r.Params(), r.State()
		info := RouteInfo{
			Route:               p.RouteType().String(),
			SNI:                 p.SNI(),
			Host:                p.HostPort(),
			ConsecutiveFailures: st.ConsecutiveFailures,
			LastAttempt:         optionalTime(st.LastAttempt),
			CooldownUntil:       optionalTime(st.CooldownUntil),
		}
		out = append(out, info)
	}
	return out
}

func collectRuntimeInfo() *RuntimeInfo {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &RuntimeInfo{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     memStats.Alloc,
		MemSys:       memStats.Sys,
		NumGC:        memStats.NumGC,
	}
}

// ============================================================================
//                              辅助方法
// ============================================================================

func (s *Server) uptime() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startTime.IsZero() {
		return ""
	}
	return time.Since(s.startTime).Round(time.Millisecond).String()
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// writeJSON 写入 JSON 响应
func (s *Server) writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		logger.Error("JSON 编码失败", "err", err)
	}
}
