// Package sheets 负责把配置中的 aba 名称匹配到数据源中的实际名称。
package sheets

import (
	"strings"

	"importacao/internal/model"
)

// NormalizeName 名称比较用的规范化：去首尾空白 + 小写
func NormalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

// Resolve 按 desired 的顺序逐个在 available 中查找；多个候选时取第一个
func Resolve(desired, available []string) model.Resolution {
	result := model.Resolution{
		Matches: []model.TabMatch{},
		Missing: []string{},
	}

	for _, want := range desired {
		actual, ok := find(want, available)
		if !ok {
			result.Missing = append(result.Missing, want)
			continue
		}
		result.Matches = append(result.Matches, model.TabMatch{
			Desired: want,
			Actual:  actual,
		})
	}

	return result
}

func find(want string, available []string) (string, bool) {
	norm := NormalizeName(want)
	for _, name := range available {
		if NormalizeName(name) == norm {
			return name, true
		}
	}
	return "", false
}
