package service

import (
	"time"

	"meeting-designations/config"
	"meeting-designations/internal/engine"
	"meeting-designations/internal/model"
)

// ── 配置、模型与引擎类型之间的转换 ──

// NewEngineConfig 由应用配置构造引擎参数；cooldown_days 覆盖内置冷却期
func NewEngineConfig(cfg *config.EngineConfig) engine.Config {
	ec := engine.DefaultConfig()
	if cfg == nil {
		return ec
	}
	if cfg.RelaxedWindowDays > 0 {
		ec.RelaxedWindowDays = cfg.RelaxedWindowDays
	}
	if cfg.MaxFallbackAttempts > 0 {
		ec.MaxFallbackAttempts = cfg.MaxFallbackAttempts
	}
	ec.EnforceCooldown = cfg.EnforceCooldown
	if cfg.DefaultCooldownDays > 0 {
		ec.Cooldowns.DefaultDays = cfg.DefaultCooldownDays
	}
	for tag, days := range cfg.CooldownDays {
		ec.Cooldowns.Days[tag] = days
	}
	return ec
}

func toEngineParticipant(p *model.Participant) engine.Participant {
	quals := make(engine.Qualifications, len(p.Qualifications))
	for k, v := range p.Qualifications {
		if v {
			quals[engine.Qualification(k)] = true
		}
	}
	return engine.Participant{
		ID:                  p.ParticipantID,
		Name:                p.Name,
		Gender:              engine.Gender(p.Gender),
		Role:                p.Role,
		Active:              p.Active,
		Minor:               p.Minor,
		FamilyGroupID:       deref(p.FamilyGroupID),
		PrimaryGuardianID:   deref(p.PrimaryGuardianID),
		SecondaryGuardianID: deref(p.SecondaryGuardianID),
		FatherID:            deref(p.FatherID),
		MotherID:            deref(p.MotherID),
		Qualifications:      quals,
	}
}

func toEngineRoster(list []model.Participant) []engine.Participant {
	roster := make([]engine.Participant, 0, len(list))
	for i := range list {
		roster = append(roster, toEngineParticipant(&list[i]))
	}
	return roster
}

func toEnginePart(p *model.ProgramPart) engine.Part {
	return engine.Part{
		ID:       p.PartID,
		Title:    p.Title,
		RawType:  p.RawType,
		Position: p.Position,
	}
}

func toEngineParts(list []model.ProgramPart) []engine.Part {
	parts := make([]engine.Part, 0, len(list))
	for i := range list {
		parts = append(parts, toEnginePart(&list[i]))
	}
	return parts
}

func toEngineHistory(list []model.AssignmentHistory) []engine.HistoryEntry {
	history := make([]engine.HistoryEntry, 0, len(list))
	for _, h := range list {
		history = append(history, engine.HistoryEntry{
			PrincipalID: h.PrincipalID,
			AssistantID: deref(h.AssistantID),
			PartType:    h.PartType,
			AssignedAt:  h.AssignedAt,
		})
	}
	return history
}

// ── 指针辅助 ──

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func sameID(a, b *string) bool {
	return deref(a) == deref(b)
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02T15:04:05Z07:00")
}
