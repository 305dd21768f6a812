package resolver

import (
	"github.com/VaazzDan/projeto-bi/internal/mapping"
	"github.com/VaazzDan/projeto-bi/internal/normalize"
)

// NotInformed 没有前导 ID 的标签统一归入此类别
const NotInformed = "NÃO INFORMADO"

// ResolverContext 单次运行的解析上下文
//
// idIndex 来自持久化映射表，运行期间只读；overlay 记录本次运行新发现的 ID；
// discovered 记录待写回映射表的 (规范化原始标签 -> 建议标签)。
// 不是并发安全的：行必须按输入顺序逐行解析。
type ResolverContext struct {
	idIndex    map[string]string
	mapped     map[string]struct{}
	overlay    map[string]string
	discovered map[string]string
	order      []string
}

// NewContext 以持久化索引创建上下文
func NewContext(idIndex map[string]string) *ResolverContext {
	if idIndex == nil {
		idIndex = map[string]string{}
	}
	mapped := make(map[string]struct{}, len(idIndex))
	for _, label := range idIndex {
		mapped[label] = struct{}{}
	}
	return &ResolverContext{
		idIndex:    idIndex,
		mapped:     mapped,
		overlay:    make(map[string]string),
		discovered: make(map[string]string),
	}
}

// Resolve 解析原始标签为规范标签（同一 ID 总是得到同一标签）
func (c *ResolverContext) Resolve(rawLabel string) string {
	id, ok := normalize.ExtractLeadingID(rawLabel)
	if !ok {
		return NotInformed
	}

	key := normalize.NormalizeKey(rawLabel)

	// 持久化映射优先于本次运行的发现
	if label, ok := c.idIndex[id]; ok {
		return label
	}
	if label, ok := c.overlay[id]; ok {
		return label
	}

	suggestion := normalize.SuggestCanonical(key)
	c.overlay[id] = suggestion
	if _, seen := c.discovered[key]; !seen {
		c.discovered[key] = suggestion
		c.order = append(c.order, key)
	}
	return suggestion
}

// Resolve 包级便捷函数
func Resolve(rawLabel string, ctx *ResolverContext) string {
	return ctx.Resolve(rawLabel)
}

// Discovered 本次运行新发现的映射（按发现顺序）
func (c *ResolverContext) Discovered() []mapping.Pair {
	out := make([]mapping.Pair, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, mapping.Pair{De: key, Para: c.discovered[key]})
	}
	return out
}

// DiscoveredCount 新发现映射数量
func (c *ResolverContext) DiscoveredCount() int {
	return len(c.order)
}

// IsMapped 标签是否已在持久化映射表中（审计视图：其余均为待确认）
func (c *ResolverContext) IsMapped(label string) bool {
	_, ok := c.mapped[label]
	return ok
}

// MappedCount 持久化映射表中不同规范标签的数量
func (c *ResolverContext) MappedCount() int {
	return len(c.mapped)
}
