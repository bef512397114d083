// Package engine 实现聚会节目的指派算法：
// 节目分类 → 规则查询 → 候选人筛选 → 公平性排序 → 降级处理。
// 引擎是纯计算，不做任何 I/O；历史记录由每次运行独占的副本承载。
package engine

import "go.uber.org/zap"

const (
	// DefaultRelaxedWindowDays 冷却放宽策略只看最近 N 天的历史
	DefaultRelaxedWindowDays = 7
	// MaxFallbackAttempts 每个节目降级尝试的硬上限
	MaxFallbackAttempts = 3
)

// Config 引擎参数
type Config struct {
	Cooldowns           CooldownTable
	RelaxedWindowDays   int
	MaxFallbackAttempts int
	// EnforceCooldown 主讲选择时排除仍处于同类型冷却期的候选人
	EnforceCooldown bool
}

// DefaultConfig 默认参数
func DefaultConfig() Config {
	return Config{
		Cooldowns:           DefaultCooldownTable(),
		RelaxedWindowDays:   DefaultRelaxedWindowDays,
		MaxFallbackAttempts: MaxFallbackAttempts,
		EnforceCooldown:     true,
	}
}

// Engine 指派引擎；无可变状态，可被多个并发运行共享
type Engine struct {
	cfg    Config
	ranker *Ranker
	logger *zap.Logger
}

// New 创建引擎。logger 为 nil 时不输出日志。
func New(cfg Config, logger *zap.Logger) *Engine {
	if cfg.Cooldowns.Days == nil {
		cfg.Cooldowns = DefaultCooldownTable()
	}
	if cfg.Cooldowns.DefaultDays <= 0 {
		cfg.Cooldowns.DefaultDays = DefaultCooldownDays
	}
	if cfg.RelaxedWindowDays <= 0 {
		cfg.RelaxedWindowDays = DefaultRelaxedWindowDays
	}
	if cfg.MaxFallbackAttempts <= 0 || cfg.MaxFallbackAttempts > MaxFallbackAttempts {
		cfg.MaxFallbackAttempts = MaxFallbackAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		cfg:    cfg,
		ranker: NewRanker(cfg.Cooldowns),
		logger: logger,
	}
}

// Config 返回规整后的参数
func (e *Engine) Config() Config {
	return e.cfg
}

// Ranker 返回引擎使用的排序器
func (e *Engine) Ranker() *Ranker {
	return e.ranker
}
