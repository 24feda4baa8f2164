package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	toml "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix 环境变量前缀
//
// 单下划线表示层级，双下划线保留字面下划线：
//
//	CHATNET_CONNECT_ATTEMPT__TIMEOUT=3s  →  connect/attempt_timeout
const EnvPrefix = "CHATNET_"

// keyDelim 配置键的层级分隔符，dns.static 的键是主机名，不能用 "."
const keyDelim = "/"

// Load 从文件与环境变量加载配置
//
// 优先级：环境变量 > 配置文件 > 预设。配置文件中的 env 字段选择预设，
// 默认为 production。path 为空时只读取环境变量。
func Load(path string) (*Config, error) {
	k := koanf.New(keyDelim)

	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, keyDelim, envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	return fromKoanf(k)
}

// FromJSON 从 JSON 文本加载配置，不读取环境变量
func FromJSON(data []byte) (*Config, error) {
	k := koanf.New(keyDelim)
	if err := k.Load(rawbytes.Provider(data), json.Parser()); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return fromKoanf(k)
}

func fromKoanf(k *koanf.Koanf) (*Config, error) {
	name := k.String("env")
	if name == "" {
		name = EnvProduction
	}
	cfg, err := ForEnv(name)
	if err != nil {
		return nil, err
	}

	// 路由列表整体替换，不与预设合并
	if k.Exists("routes") {
		cfg.Routes = nil
	}
	if k.Exists("dns" + keyDelim + "static") {
		cfg.DNS.Static = nil
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName:          "koanf",
			WeaklyTypedInput: true,
			Result:           cfg,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.TextUnmarshallerHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// parserFor 按扩展名选择解析器，默认 JSON
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser()
	default:
		return json.Parser()
	}
}

// envKey 将环境变量名映射为配置键
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	s = strings.ReplaceAll(s, "__", "%UNDERSCORE%")
	s = strings.ReplaceAll(s, "_", keyDelim)
	return strings.ReplaceAll(s, "%UNDERSCORE%", "_")
}
