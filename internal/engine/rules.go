package engine

import (
	"sort"
	"strings"
)

// ── 角色 ──

// 规范角色名
const (
	RoleElder               = "elder"
	RoleMinisterialServant  = "ministerial_servant"
	RoleRegularPioneer      = "regular_pioneer"
	RoleBaptizedPublisher   = "baptized_publisher"
	RoleUnbaptizedPublisher = "unbaptized_publisher"
	RoleStudent             = "student"
)

// roleSynonyms 本地化名称 → 规范名称
var roleSynonyms = map[string]string{
	"elder":                   RoleElder,
	"anciao":                  RoleElder,
	"ancião":                  RoleElder,
	"ministerial_servant":     RoleMinisterialServant,
	"servo_ministerial":       RoleMinisterialServant,
	"servo":                   RoleMinisterialServant,
	"ms":                      RoleMinisterialServant,
	"regular_pioneer":         RoleRegularPioneer,
	"pioneer":                 RoleRegularPioneer,
	"pioneiro_regular":        RoleRegularPioneer,
	"pioneiro":                RoleRegularPioneer,
	"baptized_publisher":      RoleBaptizedPublisher,
	"publisher":               RoleBaptizedPublisher,
	"publicador_batizado":     RoleBaptizedPublisher,
	"publicador":              RoleBaptizedPublisher,
	"unbaptized_publisher":    RoleUnbaptizedPublisher,
	"publicador_nao_batizado": RoleUnbaptizedPublisher,
	"publicador_não_batizado": RoleUnbaptizedPublisher,
	"student":                 RoleStudent,
	"estudante":               RoleStudent,
}

// NormalizeRole 统一角色名（大小写、空格、连字符不敏感）；未知角色原样返回（已规整格式）
func NormalizeRole(role string) string {
	key := strings.ToLower(strings.TrimSpace(role))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if canonical, ok := roleSynonyms[key]; ok {
		return canonical
	}
	return key
}

// ── 规则集 ──

// RuleSet 节目类型对应的资格/结构规则（不可变）
type RuleSet struct {
	Gender                Gender        `json:"gender"`
	AllowedRoles          []string      `json:"allowed_roles"` // nil 表示不限角色
	RequiredQualification Qualification `json:"required_qualification,omitempty"`
	RequiresAssistant     bool          `json:"requires_assistant"`
	AssistantSameGender   bool          `json:"assistant_same_gender,omitempty"`
	AllowFamilyAssistant  bool          `json:"allow_family_assistant,omitempty"`
}

// allowsRole 角色是否允许（已规范化后比较）
func (r RuleSet) allowsRole(role string) bool {
	if r.AllowedRoles == nil {
		return true
	}
	normalized := NormalizeRole(role)
	for _, allowed := range r.AllowedRoles {
		if NormalizeRole(allowed) == normalized {
			return true
		}
	}
	return false
}

// DefaultRuleSet 未登记类型的宽松默认规则
var DefaultRuleSet = RuleSet{Gender: GenderAny}

var (
	appointedRoles = []string{RoleElder, RoleMinisterialServant}
	brotherRoles   = []string{RoleElder, RoleMinisterialServant, RoleRegularPioneer, RoleBaptizedPublisher}
)

// demoRule 学生示范：需同性别助手，可由家庭成员替代
func demoRule(q Qualification) RuleSet {
	return RuleSet{
		Gender:                GenderAny,
		RequiredQualification: q,
		RequiresAssistant:     true,
		AssistantSameGender:   true,
		AllowFamilyAssistant:  true,
	}
}

// strictDemoRule 助手必须同性别，不接受家庭成员替代
func strictDemoRule(q Qualification) RuleSet {
	r := demoRule(q)
	r.AllowFamilyAssistant = false
	return r
}

var ruleCatalog = map[PartType]RuleSet{
	PartChairman:          {Gender: GenderMale, AllowedRoles: []string{RoleElder}, RequiredQualification: QualChairman},
	PartPrayer:            {Gender: GenderMale, AllowedRoles: brotherRoles, RequiredQualification: QualPrayer},
	PartTreasuresTalk:     {Gender: GenderMale, AllowedRoles: appointedRoles, RequiredQualification: QualTreasures},
	PartSpiritualGems:     {Gender: GenderMale, AllowedRoles: appointedRoles, RequiredQualification: QualGems},
	PartBibleReading:      {Gender: GenderMale, RequiredQualification: QualReading},
	PartStarting:          demoRule(QualStarting),
	PartFollowing:         demoRule(QualFollowing),
	PartMakingDisciples:   demoRule(QualMakingDisciples),
	PartExplainingDemo:    strictDemoRule(QualExplaining),
	PartExplainingTalk:    {Gender: GenderMale, RequiredQualification: QualExplaining},
	PartTalk:              {Gender: GenderMale, AllowedRoles: appointedRoles, RequiredQualification: QualTalk},
	PartCongregationStudy: {Gender: GenderMale, AllowedRoles: []string{RoleElder}},
}

// RuleFor 查询节目类型规则；总能返回结果
func RuleFor(t PartType) RuleSet {
	if r, ok := ruleCatalog[t]; ok {
		return r
	}
	return DefaultRuleSet
}

// CatalogEntry 规则目录条目
type CatalogEntry struct {
	PartType PartType `json:"part_type"`
	Rules    RuleSet  `json:"rules"`
}

// Catalog 返回按类型名排序的完整规则目录
func Catalog() []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(ruleCatalog))
	for t, r := range ruleCatalog {
		entries = append(entries, CatalogEntry{PartType: t, Rules: r})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].PartType < entries[j].PartType
	})
	return entries
}
