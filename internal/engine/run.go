package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Summary 一次运行的状态统计
type Summary struct {
	Total      int `json:"total"`
	Assigned   int `json:"assigned"`
	Degraded   int `json:"degraded"`
	Unassigned int `json:"unassigned"`
}

// Result 一次运行的输出
type Result struct {
	Decisions []Decision     `json:"decisions"` // 与输入节目顺序一致
	History   []HistoryEntry `json:"history"`   // 运行结束时的工作历史
	Appended  []HistoryEntry `json:"appended"`  // 本次运行新增的记录
	Summary   Summary        `json:"summary"`
}

// Decide 对单个节目做出决策（纯函数）。
// 选出主讲时同时返回应追加到历史的记录。
func (e *Engine) Decide(roster []Participant, part Part, history []HistoryEntry, asOf time.Time) (Decision, *HistoryEntry) {
	pc := &partContext{
		part:     part,
		partType: ClassifyPart(part),
		roster:   roster,
		history:  history,
		asOf:     asOf,
	}
	pc.rules = RuleFor(pc.partType)

	sel := e.selectPrincipal(roster, pc.partType, pc.rules, requireQualification(pc.rules.RequiredQualification), history, asOf)
	initial := outcome{principal: sel.principal}
	initial.assistant = e.selectAssistant(roster, sel.principal, pc.partType, pc.rules, false, history, asOf)

	var d Decision
	if initial.complete(pc.rules) {
		d = Decision{
			PartID:      part.ID,
			PartType:    pc.partType,
			PrincipalID: initial.principal.ID,
			Status:      StatusOK,
			State:       StateAssigned,
		}
		if initial.assistant != nil {
			d.AssistantID = initial.assistant.ID
		}
	} else {
		d = e.degrade(pc, initial, sel)
	}

	e.logger.Debug("节目决策完成",
		zap.String("part_id", part.ID),
		zap.String("part_type", string(pc.partType)),
		zap.String("principal_id", d.PrincipalID),
		zap.String("assistant_id", d.AssistantID),
		zap.String("state", string(d.State)),
	)

	if !d.HasPrincipal() {
		return d, nil
	}
	return d, &HistoryEntry{
		PrincipalID: d.PrincipalID,
		AssistantID: d.AssistantID,
		PartType:    string(pc.partType),
		AssignedAt:  asOf,
	}
}

// Run 按节目顺序处理整个节目单；每个选出的主讲都会写入工作历史，
// 之后的节目可感知本次运行中已做出的指派。
func (e *Engine) Run(parts []Part, roster []Participant, history []HistoryEntry, asOf time.Time) Result {
	res, _ := e.RunContext(context.Background(), parts, roster, history, asOf)
	return res
}

// RunContext 同 Run，但在节目之间检查 ctx；取消时返回已完成的部分结果与 ctx.Err()
func (e *Engine) RunContext(ctx context.Context, parts []Part, roster []Participant, history []HistoryEntry, asOf time.Time) (Result, error) {
	working := make([]HistoryEntry, len(history), len(history)+len(parts))
	copy(working, history)

	res := Result{Decisions: make([]Decision, 0, len(parts))}
	for _, part := range parts {
		if err := ctx.Err(); err != nil {
			res.History = working
			return res, err
		}

		d, entry := e.Decide(roster, part, working, asOf)
		res.Decisions = append(res.Decisions, d)
		res.Summary.add(d.State)
		if entry != nil {
			working = append(working, *entry)
			res.Appended = append(res.Appended, *entry)
		}
	}

	res.History = working
	e.logger.Info("节目单指派完成",
		zap.Int("parts", res.Summary.Total),
		zap.Int("assigned", res.Summary.Assigned),
		zap.Int("degraded", res.Summary.Degraded),
		zap.Int("unassigned", res.Summary.Unassigned),
	)
	return res, nil
}

func (s *Summary) add(state State) {
	s.Total++
	switch state {
	case StateAssigned:
		s.Assigned++
	case StateDegraded:
		s.Degraded++
	case StateUnassigned:
		s.Unassigned++
	}
}
