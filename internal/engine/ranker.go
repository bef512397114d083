package engine

import (
	"math"
	"sort"
	"time"
	"unicode/utf16"
)

// ── 评分常量 ──

const (
	BaseScore          = 100.0
	CooldownPenalty    = 50.0 // 冷却期内每条记录
	FrequencyPenalty   = 2.0  // 每次历史出现
	RecencyBonusCap    = 30   // 距最近一次的天数上限
	NeverServedBonus   = 30.0 // 无任何历史
	TieBreakWeight     = 5.0
	stableRandomModulo = 2147483647.0
)

// DefaultCooldownDays 未登记标签的默认冷却期
const DefaultCooldownDays = 28

// defaultCooldowns 各类型冷却天数（助手标签独立）
var defaultCooldowns = map[string]int{
	string(PartChairman):          42,
	string(PartPrayer):            14,
	string(PartTreasuresTalk):     28,
	string(PartSpiritualGems):     28,
	string(PartBibleReading):      21,
	string(PartStarting):          21,
	string(PartFollowing):         21,
	string(PartMakingDisciples):   21,
	string(PartExplainingTalk):    28,
	string(PartExplainingDemo):    21,
	string(PartCongregationStudy): 42,
	string(PartTalk):              28,

	PartStarting.AssistantTag():        14,
	PartFollowing.AssistantTag():       14,
	PartMakingDisciples.AssistantTag(): 14,
	PartExplainingDemo.AssistantTag():  14,
}

// CooldownTable 冷却期查询表
type CooldownTable struct {
	Days        map[string]int
	DefaultDays int
}

// DefaultCooldownTable 内置冷却表的副本
func DefaultCooldownTable() CooldownTable {
	days := make(map[string]int, len(defaultCooldowns))
	for k, v := range defaultCooldowns {
		days[k] = v
	}
	return CooldownTable{Days: days, DefaultDays: DefaultCooldownDays}
}

// Period 返回标签的冷却天数
func (t CooldownTable) Period(tag string) int {
	if d, ok := t.Days[tag]; ok {
		return d
	}
	if t.DefaultDays > 0 {
		return t.DefaultDays
	}
	return DefaultCooldownDays
}

// StableRandom 由 ID 推导 [0,1] 区间内的稳定伪随机数：
// hash = int32(hash*31 + UTF-16 码元)，结果为 |hash| / (2^31-1)。
func StableRandom(id string) float64 {
	var hash int32
	for _, unit := range utf16.Encode([]rune(id)) {
		hash = hash*31 + int32(unit)
	}
	return math.Abs(float64(hash)) / stableRandomModulo
}

// Ranked 带分数的候选人
type Ranked struct {
	Participant Participant `json:"participant"`
	Score       float64     `json:"score"`
}

// Ranker 公平性排序器
type Ranker struct {
	Cooldowns CooldownTable
}

// NewRanker 使用给定冷却表创建排序器
func NewRanker(cooldowns CooldownTable) *Ranker {
	return &Ranker{Cooldowns: cooldowns}
}

// Score 计算单个候选人分数
func (r *Ranker) Score(p *Participant, tag string, history []HistoryEntry, asOf time.Time) float64 {
	period := r.Cooldowns.Period(tag)
	score := BaseScore

	var (
		appearances int
		mostRecent  time.Time
	)
	for i := range history {
		h := &history[i]
		if !h.involves(p.ID) {
			continue
		}
		appearances++
		if daysBetween(h.AssignedAt, asOf) < period {
			score -= CooldownPenalty
		}
		if h.AssignedAt.After(mostRecent) {
			mostRecent = h.AssignedAt
		}
	}

	score -= FrequencyPenalty * float64(appearances)

	if appearances > 0 {
		score += float64(min(daysBetween(mostRecent, asOf), RecencyBonusCap))
	} else {
		score += NeverServedBonus
	}

	score += TieBreakWeight * StableRandom(p.ID)
	return score
}

// Rank 按分数降序排列；分数完全相同时保持输入顺序
func (r *Ranker) Rank(candidates []Participant, tag string, history []HistoryEntry, asOf time.Time) []Ranked {
	ranked := make([]Ranked, 0, len(candidates))
	for i := range candidates {
		ranked = append(ranked, Ranked{
			Participant: candidates[i],
			Score:       r.Score(&candidates[i], tag, history, asOf),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Rank 使用内置冷却表排序
func Rank(candidates []Participant, tag string, history []HistoryEntry, asOf time.Time) []Ranked {
	return NewRanker(DefaultCooldownTable()).Rank(candidates, tag, history, asOf)
}

// daysBetween 从 from 到 to 经过的整天数；未来时间按 0 计
func daysBetween(from, to time.Time) int {
	d := to.Sub(from)
	if d <= 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
