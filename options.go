package chatnet

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-chatnet/config"
	"github.com/dep2p/go-chatnet/pkg/types"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 配置来源，按 config > configFile > env 的优先级选择
	config     *config.Config
	configFile string
	env        string

	// 凭据覆盖
	auth *types.Auth

	// 只保留的路由类型，空表示全部
	routes []types.RouteType

	// 指标注册表，nil 表示使用私有注册表
	registry *prometheus.Registry

	// Fx 容器日志
	verboseFx bool

	// 用户自定义 Fx 选项
	fxOptions []fx.Option
}

// WithConfig 使用给定配置，配置会被复制
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return config.ErrNilConfig
		}
		o.config = cfg.Clone()
		return nil
	}
}

// WithConfigFile 从文件与 CHATNET_ 环境变量加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		o.configFile = path
		return nil
	}
}

// WithEnv 使用预设环境（staging/production）
func WithEnv(name string) Option {
	return func(o *options) error {
		o.env = name
		return nil
	}
}

// WithAuth 设置服务凭据
func WithAuth(username, password string) Option {
	return func(o *options) error {
		o.auth = &types.Auth{Username: username, Password: password}
		return nil
	}
}

// WithRoutes 只保留给定类型的路由
func WithRoutes(kinds ...types.RouteType) Option {
	return func(o *options) error {
		if len(kinds) == 0 {
			return errors.New("chatnet: WithRoutes requires at least one route type")
		}
		o.routes = append(o.routes[:0], kinds...)
		return nil
	}
}

// WithRegistry 在给定注册表上注册指标
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) error {
		o.registry = reg
		return nil
	}
}

// WithVerboseFx 输出 Fx 容器日志，用于排查依赖注入问题
func WithVerboseFx() Option {
	return func(o *options) error {
		o.verboseFx = true
		return nil
	}
}

// WithFxOptions 追加 Fx 选项，用于替换或装饰内部组件
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.fxOptions = append(o.fxOptions, opts...)
		return nil
	}
}

// resolveConfig 按选项构建最终配置
func (o *options) resolveConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case o.config != nil:
		cfg = o.config
	case o.configFile != "":
		if cfg, err = config.Load(o.configFile); err != nil {
			return nil, err
		}
	case o.env != "":
		if cfg, err = config.ForEnv(o.env); err != nil {
			return nil, err
		}
	default:
		cfg = config.NewConfig()
	}

	if o.auth != nil {
		cfg.Chat.Username = o.auth.Username
		cfg.Chat.Password = o.auth.Password
	}
	if len(o.routes) > 0 {
		cfg.KeepRoutes(o.routes...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
