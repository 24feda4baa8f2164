package dns

import (
	"context"
	"net/netip"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/multierr"
	"golang.org/x/net/idna"
	"golang.org/x/sync/singleflight"

	pkgif "github.com/dep2p/go-chatnet/pkg/interfaces"
	"github.com/dep2p/go-chatnet/pkg/lib/log"
	"github.com/dep2p/go-chatnet/pkg/types"
)

var logger = log.Logger("core/dns")

// ============================================================================
//                              Resolver
// ============================================================================

// Resolver 主机名解析器
type Resolver struct {
	cfg        Config
	strategies []Strategy
	static     map[string]pkgif.LookupResult

	cache *expirable.LRU[string, pkgif.LookupResult]
	group singleflight.Group

	// cacheMu 保护 generation 以及“比较代数后写缓存”这一步
	cacheMu sync.Mutex
	// generation 每次清空缓存递增，防止清空前发起的查询把旧结果写回缓存
	generation uint64

	sub pkgif.Subscription
}

var _ pkgif.DNSResolver = (*Resolver)(nil)

// Option Resolver 选项
type Option func(*Resolver)

// WithStrategies 替换在线策略（按给定顺序尝试）
func WithStrategies(s ...Strategy) Option {
	return func(r *Resolver) { r.strategies = s }
}

// NewResolver 创建解析器
//
// bus 非空时订阅网络变化以清空缓存。
func NewResolver(cfg Config, bus pkgif.NetworkChangeBus, opts ...Option) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Resolver{
		cfg:    cfg,
		static: make(map[string]pkgif.LookupResult, len(cfg.Static)),
		cache:  expirable.NewLRU[string, pkgif.LookupResult](cfg.CacheSize, nil, cfg.CacheTTL),
	}
	if cfg.UDPServer != "" {
		r.strategies = append(r.strategies, NewUDPStrategy(cfg.UDPServer))
	}
	if cfg.DoHURL != "" {
		r.strategies = append(r.strategies, NewDoHStrategy(cfg.DoHURL, nil))
	}
	if cfg.SystemLookup {
		r.strategies = append(r.strategies, NewSystemStrategy(nil))
	}
	for host, addrs := range cfg.Static {
		res := splitFamilies(addrs)
		res.Source = types.DNSSourceStatic
		r.static[normalize(host)] = res
	}

	for _, opt := range opts {
		opt(r)
	}

	if bus != nil {
		r.sub = bus.OnChange(func(evt types.NetworkChangeEvent) {
			r.Purge()
			logger.Debug("网络变化，已清空 DNS 缓存", "reason", evt.Reason)
		})
	}
	return r, nil
}

// LookupIP 解析主机名
//
// 调用方取消 ctx 只影响自己的等待，共享的查询继续进行以便其他调用方复用。
func (r *Resolver) LookupIP(ctx context.Context, host string) (pkgif.LookupResult, error) {
	name := normalize(host)

	if ip, err := netip.ParseAddr(name); err == nil {
		res := splitFamilies([]netip.Addr{ip})
		res.Source = types.DNSSourceStatic
		return res, nil
	}

	if res, ok := r.cache.Get(name); ok {
		res.Source = types.DNSSourceCache
		return res, nil
	}

	// 共享查询按代数区分，清空缓存后的调用方不会等待清空前的查询
	gen := r.currentGeneration()
	key := name + "#" + strconv.FormatUint(gen, 10)
	ch := r.group.DoChan(key, func() (any, error) {
		return r.resolve(context.WithoutCancel(ctx), name, gen)
	})
	select {
	case <-ctx.Done():
		return pkgif.LookupResult{}, &LookupError{Host: name, Cause: ctx.Err()}
	case v := <-ch:
		if v.Err != nil {
			return pkgif.LookupResult{}, v.Err
		}
		return v.Val.(pkgif.LookupResult), nil
	}
}

// resolve 依次尝试在线策略，最后回退到静态表
func (r *Resolver) resolve(ctx context.Context, name string, gen uint64) (pkgif.LookupResult, error) {
	var errs error
	for _, s := range r.strategies {
		sctx, cancel := context.WithTimeout(ctx, r.cfg.LookupTimeout)
		res, err := s.Lookup(sctx, name)
		cancel()

		if err == nil && !res.Empty() {
			res.Source = s.Source()
			r.store(name, res, gen)
			logger.Debug("DNS 解析成功",
				"host", name,
				"source", res.Source,
				"ipv4", len(res.IPv4),
				"ipv6", len(res.IPv6))
			return res, nil
		}
		if err == nil {
			err = ErrNoRecords
		}
		logger.Debug("DNS 策略失败", "host", name, "source", s.Source(), "err", err)
		errs = multierr.Append(errs, err)
	}

	if res, ok := r.static[name]; ok {
		logger.Info("使用静态 DNS 回退", "host", name)
		return res, nil
	}

	if errs == nil {
		errs = ErrNoRecords
	}
	return pkgif.LookupResult{}, &LookupError{Host: name, Cause: errs}
}

// store 仅当代数未变时写入缓存
func (r *Resolver) store(name string, res pkgif.LookupResult, gen uint64) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	if r.generation == gen {
		r.cache.Add(name, res)
	}
}

func (r *Resolver) currentGeneration() uint64 {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	return r.generation
}

// Purge 清空缓存
func (r *Resolver) Purge() {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	r.generation++
	r.cache.Purge()
}

// CacheLen 返回缓存条目数
func (r *Resolver) CacheLen() int {
	return r.cache.Len()
}

// Close 取消网络变化订阅
func (r *Resolver) Close() error {
	if r.sub != nil {
		return r.sub.Close()
	}
	return nil
}

// normalize 转为小写 ASCII 主机名，去掉末尾的点
func normalize(host string) string {
	host = strings.TrimSuffix(strings.TrimSpace(host), ".")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		host = ascii
	}
	return strings.ToLower(host)
}
