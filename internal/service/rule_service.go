package service

import (
	"meeting-designations/internal/dto"
	"meeting-designations/internal/engine"
)

// RuleService 规则目录查询
type RuleService interface {
	List() []dto.RuleResponse
}

type ruleService struct {
	engine *engine.Engine
}

// NewRuleService 创建 RuleService 实例
func NewRuleService(eng *engine.Engine) RuleService {
	return &ruleService{engine: eng}
}

// List 返回按类型名排序的规则，附带当前生效的冷却期
func (s *ruleService) List() []dto.RuleResponse {
	cooldowns := s.engine.Config().Cooldowns
	catalog := engine.Catalog()

	result := make([]dto.RuleResponse, 0, len(catalog))
	for _, entry := range catalog {
		r := entry.Rules
		roles := r.AllowedRoles
		if roles == nil {
			roles = []string{}
		}
		resp := dto.RuleResponse{
			PartType:              string(entry.PartType),
			Gender:                string(r.Gender),
			AllowedRoles:          roles,
			RequiredQualification: string(r.RequiredQualification),
			RequiresAssistant:     r.RequiresAssistant,
			AssistantSameGender:   r.AssistantSameGender,
			AllowFamilyAssistant:  r.AllowFamilyAssistant,
			CooldownDays:          cooldowns.Period(string(entry.PartType)),
		}
		if r.RequiresAssistant {
			resp.AssistantCooldownDays = cooldowns.Period(entry.PartType.AssistantTag())
		}
		result = append(result, resp)
	}
	return result
}
