package engine

import "time"

// principalSelection 主讲选择结果及诊断信息
type principalSelection struct {
	principal *Participant
	eligible  int // 结构筛选后的人数
	blocked   int // 因冷却被排除的人数
}

// SelectPrincipal 分类 → 规则 → 筛选 → 排序，返回最优主讲；无人时返回 nil
func (e *Engine) SelectPrincipal(roster []Participant, part Part, history []HistoryEntry, asOf time.Time) *Participant {
	partType := ClassifyPart(part)
	rules := RuleFor(partType)
	return e.selectPrincipal(roster, partType, rules, requireQualification(rules.RequiredQualification), history, asOf).principal
}

// SelectAssistant 为主讲选择助手；规则无需助手或主讲为空时返回 nil
func (e *Engine) SelectAssistant(roster []Participant, principal *Participant, part Part, history []HistoryEntry, asOf time.Time) *Participant {
	partType := ClassifyPart(part)
	return e.selectAssistant(roster, principal, partType, RuleFor(partType), false, history, asOf)
}

// RankCandidates 返回节目的全部合格候选人及分数（供人工调整参考）
func (e *Engine) RankCandidates(roster []Participant, part Part, history []HistoryEntry, asOf time.Time) []Ranked {
	partType := ClassifyPart(part)
	rules := RuleFor(partType)
	return e.ranker.Rank(FilterCandidates(roster, rules), string(partType), history, asOf)
}

func (e *Engine) selectPrincipal(
	roster []Participant,
	partType PartType,
	rules RuleSet,
	qualified QualificationPredicate,
	history []HistoryEntry,
	asOf time.Time,
) principalSelection {
	candidates := filterWith(roster, rules, qualified)
	sel := principalSelection{eligible: len(candidates)}

	if e.cfg.EnforceCooldown {
		open := candidates[:0]
		for i := range candidates {
			if e.inCooldown(&candidates[i], partType, history, asOf) {
				sel.blocked++
				continue
			}
			open = append(open, candidates[i])
		}
		candidates = open
	}

	ranked := e.ranker.Rank(candidates, string(partType), history, asOf)
	if len(ranked) > 0 {
		best := ranked[0].Participant
		sel.principal = &best
	}
	return sel
}

// InCooldown 候选人是否仍处于该类型节目的冷却期内
func (e *Engine) InCooldown(p *Participant, partType PartType, history []HistoryEntry, asOf time.Time) bool {
	return e.inCooldown(p, partType, history, asOf)
}

func (e *Engine) inCooldown(p *Participant, partType PartType, history []HistoryEntry, asOf time.Time) bool {
	period := e.cfg.Cooldowns.Period(string(partType))
	for i := range history {
		h := &history[i]
		if h.PartType != string(partType) || !h.involves(p.ID) {
			continue
		}
		if daysBetween(h.AssignedAt, asOf) < period {
			return true
		}
	}
	return false
}

// selectAssistant familyOnly=true 时忽略性别与家庭开关，只接受家庭成员
func (e *Engine) selectAssistant(
	roster []Participant,
	principal *Participant,
	partType PartType,
	rules RuleSet,
	familyOnly bool,
	history []HistoryEntry,
	asOf time.Time,
) *Participant {
	if !rules.RequiresAssistant || principal == nil {
		return nil
	}

	candidates := make([]Participant, 0, len(roster))
	for i := range roster {
		p := &roster[i]
		if !p.Active || p.ID == principal.ID {
			continue
		}
		related := IsFamilyRelated(principal, p)
		switch {
		case familyOnly:
			if !related {
				continue
			}
		case rules.AssistantSameGender && p.Gender != principal.Gender:
			if !(rules.AllowFamilyAssistant && related) {
				continue
			}
		}
		candidates = append(candidates, *p)
	}

	ranked := e.ranker.Rank(candidates, partType.AssistantTag(), history, asOf)
	if len(ranked) == 0 {
		return nil
	}
	best := ranked[0].Participant
	return &best
}

// recentHistory 仅保留最近 days 天内的记录
func recentHistory(history []HistoryEntry, asOf time.Time, days int) []HistoryEntry {
	cutoff := asOf.AddDate(0, 0, -days)
	recent := make([]HistoryEntry, 0, len(history))
	for _, h := range history {
		if !h.AssignedAt.Before(cutoff) {
			recent = append(recent, h)
		}
	}
	return recent
}
