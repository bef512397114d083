package engine

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Strategy 降级策略标签
type Strategy string

const (
	StrategyCooldownRelaxation   Strategy = "cooldown_relaxation"
	StrategyGenericQualification Strategy = "generic_qualification"
	StrategyFamilyAssistant      Strategy = "family_assistant"
)

// FallbackOrder 策略执行顺序
var FallbackOrder = []Strategy{
	StrategyCooldownRelaxation,
	StrategyGenericQualification,
	StrategyFamilyAssistant,
}

// 审计说明前缀
const (
	ReasonNoCandidates     = "未找到符合条件的候选人"
	ReasonAllInCooldown    = "所有符合条件的候选人均处于冷却期"
	ReasonAssistantMissing = "需要助手但未找到合适人选"
	ReasonResolvedBy       = "已通过降级策略完成指派"
)

// outcome 一次选择尝试的结果
type outcome struct {
	principal *Participant
	assistant *Participant
}

func (o outcome) complete(rules RuleSet) bool {
	return o.principal != nil && (!rules.RequiresAssistant || o.assistant != nil)
}

// partContext 单个节目决策所需的上下文
type partContext struct {
	part     Part
	partType PartType
	rules    RuleSet
	roster   []Participant
	history  []HistoryEntry
	asOf     time.Time
}

// try 执行单个降级策略
func (e *Engine) try(s Strategy, pc *partContext) outcome {
	switch s {
	case StrategyCooldownRelaxation:
		recent := recentHistory(pc.history, pc.asOf, e.cfg.RelaxedWindowDays)
		p := e.selectPrincipal(pc.roster, pc.partType, pc.rules, requireQualification(pc.rules.RequiredQualification), recent, pc.asOf).principal
		return outcome{principal: p, assistant: e.selectAssistant(pc.roster, p, pc.partType, pc.rules, false, recent, pc.asOf)}

	case StrategyGenericQualification:
		if pc.rules.RequiredQualification == "" {
			return outcome{}
		}
		p := e.selectPrincipal(pc.roster, pc.partType, pc.rules, anyMinistrySkill, pc.history, pc.asOf).principal
		return outcome{principal: p, assistant: e.selectAssistant(pc.roster, p, pc.partType, pc.rules, false, pc.history, pc.asOf)}

	case StrategyFamilyAssistant:
		if !pc.rules.RequiresAssistant {
			return outcome{}
		}
		p := e.selectPrincipal(pc.roster, pc.partType, pc.rules, requireQualification(pc.rules.RequiredQualification), pc.history, pc.asOf).principal
		return outcome{principal: p, assistant: e.selectAssistant(pc.roster, p, pc.partType, pc.rules, true, pc.history, pc.asOf)}
	}
	return outcome{}
}

// degrade 依次执行降级策略，最多 MaxFallbackAttempts 次。
// initial 为常规流程的结果：主讲为空，或主讲已选出但缺少必需的助手。
func (e *Engine) degrade(pc *partContext, initial outcome, diag principalSelection) Decision {
	d := Decision{PartID: pc.part.ID, PartType: pc.partType}

	var (
		tried           []string
		partial         outcome
		partialStrategy Strategy
	)
	for _, s := range FallbackOrder {
		if d.Attempts >= e.cfg.MaxFallbackAttempts {
			break
		}
		d.Attempts++
		tried = append(tried, string(s))

		res := e.try(s, pc)
		if res.complete(pc.rules) {
			d.PrincipalID = res.principal.ID
			if res.assistant != nil {
				d.AssistantID = res.assistant.ID
			}
			d.Status = StatusOK
			d.State = StateDegraded
			d.Strategy = s
			d.Reason = fmt.Sprintf("%s: %s", ReasonResolvedBy, s)
			e.logger.Info("降级策略生效",
				zap.String("part_id", pc.part.ID),
				zap.String("part_type", string(pc.partType)),
				zap.String("strategy", string(s)),
				zap.Int("attempts", d.Attempts),
			)
			return d
		}
		if partial.principal == nil && res.principal != nil {
			partial = res
			partialStrategy = s
		}
	}

	triedText := strings.Join(tried, ", ")

	// 有主讲但缺少助手：保留 OK，记录原因
	switch {
	case initial.principal != nil:
		d.PrincipalID = initial.principal.ID
		d.Status = StatusOK
		d.State = StateDegraded
		d.Reason = fmt.Sprintf("%s（已尝试: %s）", ReasonAssistantMissing, triedText)
	case partial.principal != nil:
		d.PrincipalID = partial.principal.ID
		d.Status = StatusOK
		d.State = StateDegraded
		d.Strategy = partialStrategy
		d.Reason = fmt.Sprintf("%s: %s；%s（已尝试: %s）", ReasonResolvedBy, partialStrategy, ReasonAssistantMissing, triedText)
	default:
		d.Status = StatusPending
		d.State = StateUnassigned
		d.Reason = fmt.Sprintf("%s（已尝试: %s）", pendingCause(len(pc.roster), diag), triedText)
	}

	e.logger.Info("降级策略已用尽",
		zap.String("part_id", pc.part.ID),
		zap.String("part_type", string(pc.partType)),
		zap.String("status", string(d.Status)),
		zap.Int("attempts", d.Attempts),
		zap.String("reason", d.Reason),
	)
	return d
}

// pendingCause 生成无法指派的原因描述
func pendingCause(rosterSize int, diag principalSelection) string {
	switch {
	case rosterSize == 0:
		return ReasonNoCandidates + "：成员名单为空"
	case diag.eligible == 0:
		return ReasonNoCandidates + "：无人满足性别、角色或资格要求"
	case diag.blocked == diag.eligible:
		return fmt.Sprintf("%s（%d 人）", ReasonAllInCooldown, diag.blocked)
	default:
		return ReasonNoCandidates
	}
}
