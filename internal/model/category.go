package model

import "strings"

// CategoryKind 分类规则
type CategoryKind string

const (
	CategoryApprovedUnresolved CategoryKind = "approved_unresolved" // deferido 且未处理
	CategoryResolved           CategoryKind = "resolved"            // Resolvido? = sim
	CategoryPending            CategoryKind = "pending"             // 非 deferido 且未标记 sim
)

// Category 展示分类：标签 + 过滤后的表 + 图表颜色
type Category struct {
	Key   string       `json:"key"`
	Label string       `json:"label"`
	Kind  CategoryKind `json:"kind"`
	Tab   string       `json:"tab"` // 来源 aba（配置中的名称）
	Color string       `json:"color"`
	Table Table        `json:"table"`
	Count int          `json:"count"`
}

// NewCategory 创建分类，Count 取自表长度
func NewCategory(kind CategoryKind, label, tab, color string, table Table) Category {
	return Category{
		Key:   CategoryKey(kind, tab),
		Label: label,
		Kind:  kind,
		Tab:   tab,
		Color: color,
		Table: table,
		Count: table.Len(),
	}
}

// CategoryKey 分类唯一键，例如 "approved_unresolved:servidores"
func CategoryKey(kind CategoryKind, tab string) string {
	return string(kind) + ":" + strings.ToLower(strings.TrimSpace(tab))
}

// SummaryEntry 汇总图表的一根柱子
type SummaryEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

var namedColors = map[string]string{
	"blue":   "#0000FF",
	"green":  "#008000",
	"orange": "#FFA500",
	"red":    "#FF0000",
	"purple": "#800080",
	"gray":   "#808080",
	"grey":   "#808080",
	"black":  "#000000",
	"teal":   "#008080",
	"navy":   "#000080",
}

// ColorHex 将 CSS 颜色名或 #RRGGBB 转为 RRGGBB（excelize 使用）；无法识别时返回灰色
func ColorHex(color string) string {
	c := strings.ToLower(strings.TrimSpace(color))
	if v, ok := namedColors[c]; ok {
		c = v
	}
	c = strings.TrimPrefix(c, "#")
	if len(c) != 6 {
		return "808080"
	}
	for _, ch := range c {
		if !strings.ContainsRune("0123456789abcdef", ch) {
			return "808080"
		}
	}
	return strings.ToUpper(c)
}
