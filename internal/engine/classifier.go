package engine

import "strings"

// PartType 内部节目类型
type PartType string

const (
	PartChairman          PartType = "chairman"
	PartPrayer            PartType = "prayer"
	PartTreasuresTalk     PartType = "treasures_talk"
	PartSpiritualGems     PartType = "spiritual_gems"
	PartBibleReading      PartType = "bible_reading"
	PartStarting          PartType = "starting"
	PartFollowing         PartType = "following"
	PartMakingDisciples   PartType = "making_disciples"
	PartExplainingTalk    PartType = "explaining_talk"
	PartExplainingDemo    PartType = "explaining_demo"
	PartCongregationStudy PartType = "congregation_study"
	PartTalk              PartType = "talk"
	PartUnknown           PartType = "unknown"
)

// AssistantTag 助手使用独立的冷却标签
func (t PartType) AssistantTag() string {
	return string(t) + "_assistant"
}

// partKeywords 按优先级排列；首个命中者胜出
var partKeywords = []struct {
	partType PartType
	keywords []string
}{
	{PartChairman, []string{"presidente", "chairman", "comentários iniciais", "comentarios iniciais", "opening comments"}},
	{PartPrayer, []string{"oração", "oracao", "prayer"}},
	{PartTreasuresTalk, []string{"tesouros", "treasures"}},
	{PartSpiritualGems, []string{"joias espirituais", "jóias espirituais", "joias", "jóias", "spiritual gems", "gems"}},
	{PartBibleReading, []string{"leitura da bíblia", "leitura da biblia", "bible reading", "leitura", "reading"}},
	{PartCongregationStudy, []string{"estudo bíblico de congregação", "estudo biblico de congregacao", "congregation bible study", "congregation study"}},
	{PartStarting, []string{"iniciando conversas", "iniciando", "starting a conversation", "starting"}},
	{PartFollowing, []string{"cultivando o interesse", "cultivando", "following up", "following", "return visit"}},
	{PartMakingDisciples, []string{"fazendo discípulos", "fazendo discipulos", "making disciples", "disciples"}},
	{explainingMarker, []string{"explicando suas crenças", "explicando suas crencas", "explicando", "explaining your beliefs", "explaining"}},
	{PartTalk, []string{"discurso", "talk", "necessidades locais", "local needs"}},
}

// explainingMarker 占位类型，命中后再区分 talk / demo
const explainingMarker PartType = "explaining"

// solo talk 信号
var talkSignals = []string{"discurso", "talk", "speech"}

// Classify 将节目标题与原始类型映射为内部类型（大小写不敏感，纯函数）
func Classify(title, rawType string) PartType {
	text := strings.ToLower(strings.TrimSpace(title) + " " + strings.TrimSpace(rawType))

	for _, entry := range partKeywords {
		if !containsAny(text, entry.keywords) {
			continue
		}
		if entry.partType == explainingMarker {
			if containsAny(text, talkSignals) {
				return PartExplainingTalk
			}
			return PartExplainingDemo
		}
		return entry.partType
	}
	return PartUnknown
}

// ClassifyPart 便捷方法
func ClassifyPart(p Part) PartType {
	return Classify(p.Title, p.RawType)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
