// Package knowledge 提供内置的知识库，用于补充系统指令和知识库弹窗。
package knowledge

import (
	"fmt"
	"strings"
)

// MaxResults 是一次检索最多返回的条目数，避免撑爆上下文。
const MaxResults = 3

// Item 是一条知识库问答。
type Item struct {
	ID       string   `json:"id"`
	Category string   `json:"category"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Keywords []string `json:"keywords"`
}

// Base 是一组按顺序排列的知识库条目，顺序即优先级。
type Base struct {
	items []Item
}

// New 用给定条目创建知识库。
func New(items []Item) *Base {
	return &Base{items: items}
}

// Default 返回内置知识库。
func Default() *Base {
	return New(defaultItems)
}

// Items 返回全部条目的副本。
func (b *Base) Items() []Item {
	out := make([]Item, len(b.items))
	copy(out, b.items)
	return out
}

// FindRelevant 返回关键词出现在问题中、或问题标题包含查询的条目，最多 MaxResults 条。
func (b *Base) FindRelevant(query string) []Item {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Item
	for _, item := range b.items {
		if matches(item, q) {
			out = append(out, item)
			if len(out) == MaxResults {
				break
			}
		}
	}
	return out
}

// Context 把检索结果格式化为可追加到系统指令的文本，没有命中时返回空串。
func (b *Base) Context(query string) string {
	items := b.FindRelevant(query)
	if len(items) == 0 {
		return ""
	}
	blocks := make([]string, len(items))
	for i, item := range items {
		blocks[i] = fmt.Sprintf("[Knowledge Base - %s]: %s\nAnswer: %s", item.Category, item.Question, item.Answer)
	}
	return strings.Join(blocks, "\n\n")
}

func matches(item Item, lowerQuery string) bool {
	for _, k := range item.Keywords {
		if strings.Contains(lowerQuery, strings.ToLower(k)) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(item.Question), lowerQuery)
}
