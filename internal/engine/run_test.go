package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine() *Engine {
	return New(DefaultConfig(), zap.NewNop())
}

func brother(id, role string, quals ...Qualification) Participant {
	return Participant{ID: id, Gender: GenderMale, Role: role, Active: true, Qualifications: qualSet(quals...)}
}

func sister(id string, quals ...Qualification) Participant {
	return Participant{ID: id, Gender: GenderFemale, Role: RoleBaptizedPublisher, Active: true, Qualifications: qualSet(quals...)}
}

func qualSet(quals ...Qualification) Qualifications {
	q := Qualifications{}
	for _, k := range quals {
		q[k] = true
	}
	return q
}

// ── 典型场景 ──

func TestRun_ChairmanPicksQualifiedElder(t *testing.T) {
	roster := []Participant{
		brother("A", RoleElder, QualChairman),
		brother("B", RoleElder, QualTreasures),
	}
	parts := []Part{{ID: "p1", Title: "Presidente"}}

	res := newTestEngine().Run(parts, roster, nil, testAsOf)

	require.Len(t, res.Decisions, 1)
	d := res.Decisions[0]
	assert.Equal(t, "A", d.PrincipalID)
	assert.Empty(t, d.AssistantID)
	assert.Equal(t, StatusOK, d.Status)
	assert.Equal(t, StateAssigned, d.State)
	assert.Empty(t, d.Strategy)
	assert.Empty(t, d.Reason)
	assert.Zero(t, d.Attempts)
}

func TestRun_RecentChairmanWithoutAlternativeIsPending(t *testing.T) {
	roster := []Participant{
		brother("A", RoleElder, QualChairman),
		brother("B", RoleElder, QualTreasures),
	}
	history := []HistoryEntry{{PrincipalID: "A", PartType: string(PartChairman), AssignedAt: daysAgo(3)}}
	parts := []Part{{ID: "p1", Title: "Presidente"}}

	res := newTestEngine().Run(parts, roster, history, testAsOf)

	d := res.Decisions[0]
	assert.Equal(t, StatusPending, d.Status)
	assert.Equal(t, StateUnassigned, d.State)
	assert.Empty(t, d.PrincipalID)
	assert.Contains(t, d.Reason, ReasonAllInCooldown)
	assert.Equal(t, MaxFallbackAttempts, d.Attempts)
	assert.Len(t, res.History, 1, "PENDING 不写入历史")
}

func TestRun_CooldownRelaxationResolvesOlderAssignment(t *testing.T) {
	roster := []Participant{brother("A", RoleElder, QualChairman)}
	history := []HistoryEntry{{PrincipalID: "A", PartType: string(PartChairman), AssignedAt: daysAgo(10)}}
	parts := []Part{{ID: "p1", Title: "Presidente"}}

	res := newTestEngine().Run(parts, roster, history, testAsOf)

	d := res.Decisions[0]
	assert.Equal(t, "A", d.PrincipalID)
	assert.Equal(t, StatusOK, d.Status)
	assert.Equal(t, StateDegraded, d.State)
	assert.Equal(t, StrategyCooldownRelaxation, d.Strategy)
	assert.Contains(t, d.Reason, string(StrategyCooldownRelaxation))
	assert.Equal(t, 1, d.Attempts)
}

func TestRun_RelaxedWindowIsConfigurable(t *testing.T) {
	roster := []Participant{brother("A", RoleElder, QualChairman)}
	history := []HistoryEntry{{PrincipalID: "A", PartType: string(PartChairman), AssignedAt: daysAgo(10)}}
	parts := []Part{{ID: "p1", Title: "Presidente"}}

	cfg := DefaultConfig()
	cfg.RelaxedWindowDays = 14
	res := New(cfg, nil).Run(parts, roster, history, testAsOf)

	assert.Equal(t, StatusPending, res.Decisions[0].Status)
}

func TestRun_GenericQualificationFallback(t *testing.T) {
	roster := []Participant{
		sister("S1", QualStarting),
		sister("S2"),
	}
	parts := []Part{{ID: "p1", Title: "Fazendo discípulos"}}

	res := newTestEngine().Run(parts, roster, nil, testAsOf)

	d := res.Decisions[0]
	assert.Equal(t, "S1", d.PrincipalID)
	assert.Equal(t, "S2", d.AssistantID)
	assert.Equal(t, StrategyGenericQualification, d.Strategy)
	assert.Equal(t, StateDegraded, d.State)
	assert.Equal(t, 2, d.Attempts)
}

func TestRun_FamilyMemberSubstitutesSameGenderAssistant(t *testing.T) {
	roster := []Participant{
		{ID: "F", Gender: GenderFemale, Role: RoleBaptizedPublisher, Active: true, FamilyGroupID: "fam-1", Qualifications: qualSet(QualStarting)},
		{ID: "M", Gender: GenderMale, Role: RoleBaptizedPublisher, Active: true, FamilyGroupID: "fam-1"},
		{ID: "X", Gender: GenderMale, Role: RoleElder, Active: true},
	}
	parts := []Part{{ID: "p1", Title: "Iniciando conversas"}}

	res := newTestEngine().Run(parts, roster, nil, testAsOf)

	d := res.Decisions[0]
	assert.Equal(t, "F", d.PrincipalID)
	assert.Equal(t, "M", d.AssistantID)
	assert.Equal(t, StateAssigned, d.State)
	assert.Empty(t, d.Reason)
}

func TestRun_FamilyAssistantOverride(t *testing.T) {
	// explaining_demo 不允许家庭替代，只有第 3 个策略能接受
	roster := []Participant{
		{ID: "F", Gender: GenderFemale, Role: RoleBaptizedPublisher, Active: true, Qualifications: qualSet(QualExplaining)},
		{ID: "M", Gender: GenderMale, Role: RoleBaptizedPublisher, Active: true, MotherID: "F"},
	}
	parts := []Part{{ID: "p1", Title: "Explicando suas crenças", RawType: "demonstration"}}

	res := newTestEngine().Run(parts, roster, nil, testAsOf)

	d := res.Decisions[0]
	assert.Equal(t, PartExplainingDemo, d.PartType)
	assert.Equal(t, "F", d.PrincipalID)
	assert.Equal(t, "M", d.AssistantID)
	assert.Equal(t, StrategyFamilyAssistant, d.Strategy)
	assert.Equal(t, StatusOK, d.Status)
	assert.Equal(t, 3, d.Attempts)
}

func TestRun_MissingAssistantKeepsPrincipal(t *testing.T) {
	roster := []Participant{
		sister("F", QualStarting),
		brother("X", RoleElder),
	}
	parts := []Part{{ID: "p1", Title: "Iniciando conversas"}}

	res := newTestEngine().Run(parts, roster, nil, testAsOf)

	d := res.Decisions[0]
	assert.Equal(t, "F", d.PrincipalID)
	assert.Empty(t, d.AssistantID)
	assert.Equal(t, StatusOK, d.Status)
	assert.Equal(t, StateDegraded, d.State)
	assert.Contains(t, d.Reason, ReasonAssistantMissing)
	require.Len(t, res.Appended, 1)
	assert.Empty(t, res.Appended[0].AssistantID)
}

func TestRun_EmptyRosterIsPendingEverywhere(t *testing.T) {
	parts := []Part{
		{ID: "p1", Title: "Presidente"},
		{ID: "p2", Title: "Iniciando conversas"},
		{ID: "p3", Title: "Cântico"},
	}

	res := newTestEngine().Run(parts, nil, nil, testAsOf)

	require.Len(t, res.Decisions, 3)
	for _, d := range res.Decisions {
		assert.Equal(t, StatusPending, d.Status, d.PartID)
		assert.Contains(t, d.Reason, ReasonNoCandidates, d.PartID)
	}
	assert.Equal(t, Summary{Total: 3, Unassigned: 3}, res.Summary)
	assert.Empty(t, res.History)
}

func TestRun_IntraRunFeedbackAvoidsDoubleBooking(t *testing.T) {
	roster := []Participant{
		brother("R1", RoleBaptizedPublisher, QualReading),
		brother("R2", RoleBaptizedPublisher, QualReading),
	}
	parts := []Part{
		{ID: "p1", Title: "Leitura da Bíblia"},
		{ID: "p2", Title: "Leitura da Bíblia"},
	}

	for _, enforce := range []bool{true, false} {
		cfg := DefaultConfig()
		cfg.EnforceCooldown = enforce
		res := New(cfg, nil).Run(parts, roster, nil, testAsOf)

		require.Len(t, res.Decisions, 2)
		assert.NotEqual(t, res.Decisions[0].PrincipalID, res.Decisions[1].PrincipalID, "enforce=%v", enforce)
		assert.Len(t, res.History, 2)
	}
}

func TestRun_DoesNotMutateCallerHistory(t *testing.T) {
	roster := []Participant{brother("A", RoleElder, QualChairman)}
	history := make([]HistoryEntry, 0, 8)
	parts := []Part{{ID: "p1", Title: "Presidente"}}

	res := newTestEngine().Run(parts, roster, history, testAsOf)

	assert.Len(t, history, 0)
	assert.Len(t, res.History, 1)
	assert.Equal(t, string(PartChairman), res.History[0].PartType)
	assert.Equal(t, testAsOf, res.History[0].AssignedAt)
}

func TestRunContext_CancelledBetweenParts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newTestEngine().RunContext(ctx, []Part{{ID: "p1", Title: "Presidente"}}, nil, nil, testAsOf)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Decisions)
}

func TestNew_ClampsFallbackAttempts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFallbackAttempts = 10
	assert.Equal(t, MaxFallbackAttempts, New(cfg, nil).Config().MaxFallbackAttempts)

	cfg.MaxFallbackAttempts = 1
	e := New(cfg, nil)
	res := e.Run([]Part{{ID: "p1", Title: "Presidente"}}, nil, nil, testAsOf)
	assert.Equal(t, 1, res.Decisions[0].Attempts)
}

func TestSelectAssistant_NeverReturnsPrincipal(t *testing.T) {
	e := newTestEngine()
	principal := sister("F", QualStarting)
	roster := []Participant{principal}
	part := Part{ID: "p1", Title: "Iniciando conversas"}

	assert.Nil(t, e.SelectAssistant(roster, &principal, part, nil, testAsOf))
	assert.Nil(t, e.SelectAssistant(roster, nil, part, nil, testAsOf))
	assert.Nil(t, e.SelectAssistant(roster, &principal, Part{ID: "p2", Title: "Presidente"}, nil, testAsOf))
}

func TestRankCandidates(t *testing.T) {
	roster := []Participant{
		brother("A", RoleElder, QualChairman),
		brother("B", RoleElder, QualChairman),
		brother("C", RoleElder),
	}
	history := []HistoryEntry{{PrincipalID: "A", PartType: string(PartChairman), AssignedAt: daysAgo(3)}}

	ranked := newTestEngine().RankCandidates(roster, Part{ID: "p1", Title: "Presidente"}, history, testAsOf)
	require.Len(t, ranked, 2)
	assert.Equal(t, "B", ranked[0].Participant.ID)
	assert.Equal(t, "A", ranked[1].Participant.ID)
}

// ── 属性 ──

func fullRoster() []Participant {
	return []Participant{
		brother("E1", RoleElder, QualChairman, QualPrayer, QualTreasures, QualGems, QualTalk),
		brother("E2", "Ancião", QualChairman, QualPrayer, QualGems, QualTalk),
		brother("S1", RoleMinisterialServant, QualPrayer, QualGems, QualReading, QualTalk),
		brother("P1", RoleBaptizedPublisher, QualReading, QualStarting, QualExplaining, QualPrayer),
		{ID: "P2", Gender: GenderMale, Role: RoleUnbaptizedPublisher, Active: true, Minor: true, FatherID: "E1", Qualifications: qualSet(QualReading, QualFollowing)},
		sister("F1", QualStarting, QualFollowing),
		sister("F2", QualFollowing, QualMakingDisciples),
		{ID: "F3", Gender: GenderFemale, Role: RoleRegularPioneer, Active: true, FamilyGroupID: "fam-9", Qualifications: qualSet(QualMakingDisciples, QualExplaining)},
		{ID: "F4", Gender: GenderFemale, Role: RoleBaptizedPublisher, Active: false, Qualifications: qualSet(QualStarting)},
		{ID: "M9", Gender: GenderMale, Role: RoleBaptizedPublisher, Active: true, FamilyGroupID: "fam-9"},
	}
}

func fullProgram() []Part {
	return []Part{
		{ID: "01", Title: "Presidente"},
		{ID: "02", Title: "Oração inicial"},
		{ID: "03", Title: "Tesouros da Palavra de Deus", RawType: "talk"},
		{ID: "04", Title: "Joias espirituais"},
		{ID: "05", Title: "Leitura da Bíblia"},
		{ID: "06", Title: "Iniciando conversas", RawType: "demonstration"},
		{ID: "07", Title: "Cultivando o interesse", RawType: "demonstration"},
		{ID: "08", Title: "Fazendo discípulos", RawType: "demonstration"},
		{ID: "09", Title: "Explicando suas crenças", RawType: "talk"},
		{ID: "10", Title: "Necessidades locais"},
		{ID: "11", Title: "Estudo bíblico de congregação"},
		{ID: "12", Title: "Oração final"},
	}
}

func fullHistory() []HistoryEntry {
	return []HistoryEntry{
		{PrincipalID: "E1", PartType: string(PartChairman), AssignedAt: daysAgo(7)},
		{PrincipalID: "F1", AssistantID: "F2", PartType: string(PartStarting), AssignedAt: daysAgo(14)},
		{PrincipalID: "S1", PartType: string(PartBibleReading), AssignedAt: daysAgo(35)},
		{PrincipalID: "E2", PartType: string(PartPrayer), AssignedAt: daysAgo(2)},
	}
}

func TestRun_Properties(t *testing.T) {
	e := newTestEngine()
	roster := fullRoster()
	parts := fullProgram()
	history := fullHistory()

	first := e.Run(parts, roster, history, testAsOf)
	second := e.Run(parts, roster, history, testAsOf)

	t.Run("determinism", func(t *testing.T) {
		a, err := json.Marshal(first)
		require.NoError(t, err)
		b, err := json.Marshal(second)
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b))
	})

	byID := make(map[string]Participant, len(roster))
	for _, p := range roster {
		byID[p.ID] = p
	}

	require.Len(t, first.Decisions, len(parts))
	withPrincipal := 0
	for i, d := range first.Decisions {
		assert.Equal(t, parts[i].ID, d.PartID, "decisions keep program order")
		assert.LessOrEqual(t, d.Attempts, MaxFallbackAttempts)
		assert.True(t, d.State.IsTerminal())

		if d.Status == StatusPending {
			assert.NotEmpty(t, d.Reason, d.PartID)
			continue
		}
		withPrincipal++
		principal := byID[d.PrincipalID]
		rules := RuleFor(d.PartType)

		if d.AssistantID != "" {
			assert.NotEqual(t, d.PrincipalID, d.AssistantID, "self assistant on %s", d.PartID)
		}
		if rules.Gender == GenderMale {
			assert.Equal(t, GenderMale, principal.Gender, d.PartID)
		}
		if d.Reason == "" && rules.RequiredQualification != "" {
			assert.True(t, principal.Qualifications.Has(rules.RequiredQualification), d.PartID)
		}
		assert.True(t, principal.Active, d.PartID)
	}

	t.Run("monotonic history growth", func(t *testing.T) {
		assert.Len(t, first.History, len(history)+withPrincipal)
		assert.Len(t, first.Appended, withPrincipal)
	})

	t.Run("summary adds up", func(t *testing.T) {
		s := first.Summary
		assert.Equal(t, len(parts), s.Total)
		assert.Equal(t, s.Total, s.Assigned+s.Degraded+s.Unassigned)
	})
}
