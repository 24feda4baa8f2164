package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config 指标配置
type Config struct {
	// Enabled 是否暴露 HTTP 端点
	Enabled bool

	// ListenAddr 监听地址
	// 默认值: "127.0.0.1:9464"
	ListenAddr string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Enabled:    false,
		ListenAddr: "127.0.0.1:9464",
	}
}

// Server 指标 HTTP 服务
type Server struct {
	httpServer *http.Server
	ln         net.Listener
}

// NewServer 创建指标服务
func NewServer(cfg Config, gatherer prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
		},
	}
}

// Start 开始监听
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("metrics: listen %s: %w", s.httpServer.Addr, err)
	}
	s.ln = ln

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("指标服务异常退出", "err", err)
		}
	}()
	logger.Info("指标服务已启动", "addr", ln.Addr().String())
	return nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.httpServer.Addr
	}
	return s.ln.Addr().String()
}

// Stop 停止服务
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
