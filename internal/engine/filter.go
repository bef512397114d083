package engine

// QualificationPredicate 判断参与者是否满足资格要求
type QualificationPredicate func(p *Participant) bool

// requireQualification 规则本身的资格判定；未设置资格时恒为 true
func requireQualification(key Qualification) QualificationPredicate {
	return func(p *Participant) bool {
		if key == "" {
			return true
		}
		return p.Qualifications.Has(key)
	}
}

// anyMinistrySkill 通用传道技能判定（降级策略 2 使用）
func anyMinistrySkill(p *Participant) bool {
	return p.Qualifications.HasAnyMinistrySkill()
}

// FilterCandidates 按规则筛选结构上合格的候选人（无副作用）
func FilterCandidates(roster []Participant, rules RuleSet) []Participant {
	return filterWith(roster, rules, requireQualification(rules.RequiredQualification))
}

// filterWith 与 FilterCandidates 相同，但资格判定可替换
func filterWith(roster []Participant, rules RuleSet, qualified QualificationPredicate) []Participant {
	result := make([]Participant, 0, len(roster))
	for i := range roster {
		p := &roster[i]
		if !p.Active {
			continue
		}
		if rules.Gender == GenderMale && p.Gender != GenderMale {
			continue
		}
		if !rules.allowsRole(p.Role) {
			continue
		}
		if !qualified(p) {
			continue
		}
		result = append(result, *p)
	}
	return result
}

// IsFamilyRelated 两人是否存在家庭关系：
// 同一家庭组，或任一方向的直接父母/子女关系，或有共同的父母 ID。
func IsFamilyRelated(a, b *Participant) bool {
	if a == nil || b == nil || a.ID == b.ID {
		return false
	}
	if a.FamilyGroupID != "" && a.FamilyGroupID == b.FamilyGroupID {
		return true
	}

	aParents := a.parentIDs()
	bParents := b.parentIDs()
	for _, id := range aParents {
		if id == b.ID {
			return true
		}
	}
	for _, id := range bParents {
		if id == a.ID {
			return true
		}
	}
	for _, x := range aParents {
		for _, y := range bParents {
			if x == y {
				return true
			}
		}
	}
	return false
}
