package duo

import (
	"sort"
	"strings"
)

var chatModelKeywords = []string{"gpt-3.5", "gpt-4", "turbo"}

// FilterChatModels keeps the chat-capable ids, sorted and without duplicates.
func FilterChatModels(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if seen[id] {
			continue
		}
		for _, kw := range chatModelKeywords {
			if strings.Contains(id, kw) {
				seen[id] = true
				out = append(out, id)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// Recommendation 推荐的模型；字段为空表示账号不可用。
type Recommendation struct {
	Capable       string `json:"capable,omitempty"`
	CostEffective string `json:"cost_effective,omitempty"`
}

// Recommend picks the first gpt-4 family model and gpt-3.5-turbo when present.
func Recommend(models []string) Recommendation {
	var r Recommendation
	for _, m := range models {
		if r.Capable == "" && strings.Contains(m, "gpt-4") {
			r.Capable = m
		}
		if m == FallbackModel {
			r.CostEffective = m
		}
	}
	return r
}
