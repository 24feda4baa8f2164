// Package main 提供聊天连接的连通性测试命令
//
// 默认只走直连路由；-proxy-f / -proxy-g 改走对应的域前置代理；
// -try-all-routes 在每条路由上各尝试一次并逐条报告。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dep2p/go-chatnet"
	"github.com/dep2p/go-chatnet/config"
	"github.com/dep2p/go-chatnet/pkg/lib/log"
	"github.com/dep2p/go-chatnet/pkg/types"
)

var logger = log.Logger("chatnet/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
var (
	// ─────────────────────────────────────────────────────────────────────
	// 环境与路由
	// ─────────────────────────────────────────────────────────────────────
	env          = flag.String("env", "staging", "预设环境 (staging/prod)")
	configFile   = flag.String("config", "", "配置文件路径（JSON 或 TOML），优先于 -env")
	proxyF       = flag.Bool("proxy-f", false, "只使用 ProxyF 路由")
	proxyG       = flag.Bool("proxy-g", false, "只使用 ProxyG 路由")
	tryAllRoutes = flag.Bool("try-all-routes", false, "在每条路由上各尝试一次并报告结果")
	timeout      = flag.Duration("timeout", 30*time.Second, "总超时")

	// ─────────────────────────────────────────────────────────────────────
	// 凭据
	// ─────────────────────────────────────────────────────────────────────
	username = flag.String("username", "", "用户名（为空时匿名连接）")
	password = flag.String("password", "", "密码")

	// ─────────────────────────────────────────────────────────────────────
	// 日志与指标
	// ─────────────────────────────────────────────────────────────────────
	logLevel       = flag.String("log-level", "", "日志级别，如 info 或 core/connmgr=debug,info")
	logFormat      = flag.String("log-format", "", "日志格式 (text/json)")
	metricsAddr    = flag.String("metrics-addr", "", "暴露 /metrics 的监听地址（为空时不暴露）")
	introspectAddr = flag.String("introspect-addr", "", "暴露 /debug/introspect 的监听地址（为空时不暴露）")
	fxVerbose      = flag.Bool("fx-verbose", false, "输出依赖注入容器日志")

	showVersion = flag.Bool("version", false, "显示版本信息")
)

// errRouteFailed 诊断模式下至少一条路由失败
var errRouteFailed = errors.New("route check failed")

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(chatnet.VersionInfo())
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}
	cfg.Log.Apply()

	opts := []chatnet.Option{chatnet.WithConfig(cfg)}
	if *fxVerbose {
		opts = append(opts, chatnet.WithVerboseFx())
	}
	client, err := chatnet.New(opts...)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, *timeout)
	defer cancelTimeout()

	defer func() {
		stopCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = client.Close(stopCtx)
	}()

	logger.Info("开始连通性测试",
		"version", chatnet.Version,
		"env", cfg.Env,
		"routes", len(cfg.Routes),
		"tryAll", *tryAllRoutes)

	if *tryAllRoutes {
		return runTryAll(ctx, client)
	}
	return runConnect(ctx, client)
}

// loadConfig 加载配置并应用命令行覆盖
func loadConfig() (*config.Config, error) {
	if *proxyF && *proxyG {
		return nil, chatnet.ErrConflictingRoutes
	}

	var (
		cfg *config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.Load(*configFile)
	} else {
		cfg, err = config.ForEnv(*env)
	}
	if err != nil {
		return nil, err
	}

	switch {
	case *proxyF:
		cfg.KeepRoutes(types.RouteProxyF)
	case *proxyG:
		cfg.KeepRoutes(types.RouteProxyG)
	case !*tryAllRoutes:
		cfg.KeepRoutes(types.RouteDirect)
	}

	if *username != "" {
		cfg.Chat.Username = *username
		cfg.Chat.Password = *password
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.ListenAddr = *metricsAddr
	}
	if *introspectAddr != "" {
		cfg.Introspect.Enabled = true
		cfg.Introspect.Addr = *introspectAddr
	}
	return cfg, cfg.Validate()
}

// runConnect 完成一轮连接，建立会话后立即关闭
func runConnect(ctx context.Context, client *chatnet.Client) error {
	start := time.Now()
	session, err := client.ConnectOnce(ctx)
	if err != nil {
		return fmt.Errorf("连接失败（%s）: %w", time.Since(start).Round(time.Millisecond), err)
	}
	fmt.Printf("✅ 已连接: %s（%s）\n", session.Info().Description(), time.Since(start).Round(time.Millisecond))
	return session.Close()
}

// runTryAll 并发尝试所有路由并打印结果表，任一路由失败即返回错误
func runTryAll(ctx context.Context, client *chatnet.Client) error {
	reports, err := client.TryAllRoutes(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROUTE\tHOST\tSNI\tRESULT\tELAPSED")
	failed := 0
	for _, r := range reports {
		result := "ok " + r.Info.Description()
		if !r.OK() {
			result = fmt.Sprintf("%s: %v", r.Class, r.Err)
			failed++
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Route, r.Host, r.SNI, result, r.Elapsed.Round(time.Millisecond))
	}
	_ = w.Flush()

	if failed > 0 {
		return fmt.Errorf("%w: %d/%d", errRouteFailed, failed, len(reports))
	}
	return nil
}
