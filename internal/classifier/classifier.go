// Package classifier 按 Pendência / Resolvido? 两列把一个 aba 的记录划分为展示分类。
//
// 三个谓词互相独立：同一条记录可能命中多个分类，也可能一个都不命中，这里不做修正。
package classifier

import (
	"errors"
	"fmt"
	"strings"

	"importacao/internal/model"
)

const (
	DefaultPendenciaColumn = "Pendência"
	DefaultResolvidoColumn = "Resolvido?"

	valueDeferido = "deferido"
	valueSim      = "sim"
)

// ErrMissingColumn 表中缺少分类所需的列
var ErrMissingColumn = errors.New("missing column")

// MissingColumnError 具体缺少的列
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("coluna obrigatória %q não encontrada na aba %q", e.Column, e.Table)
}

// Is 使 errors.Is(err, ErrMissingColumn) 成立
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// Columns 参与分类的两列
type Columns struct {
	Pendencia string `toml:"pendencia" json:"pendencia"`
	Resolvido string `toml:"resolvido" json:"resolvido"`
}

// DefaultColumns 默认列名
func DefaultColumns() Columns {
	return Columns{
		Pendencia: DefaultPendenciaColumn,
		Resolvido: DefaultResolvidoColumn,
	}
}

// withDefaults 空列名回落到默认值
func (c Columns) withDefaults() Columns {
	if strings.TrimSpace(c.Pendencia) == "" {
		c.Pendencia = DefaultPendenciaColumn
	}
	if strings.TrimSpace(c.Resolvido) == "" {
		c.Resolvido = DefaultResolvidoColumn
	}
	return c
}

// Normalize 比较前的规范化：去首尾空白 + 小写；缺失值即空串
func Normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Predicate 记录过滤条件
type Predicate func(model.Record) bool

// ApprovedUnresolved Resolvido? 为空 且 Pendência = deferido
func ApprovedUnresolved(cols Columns) Predicate {
	cols = cols.withDefaults()
	return func(r model.Record) bool {
		return Normalize(r.Get(cols.Resolvido)) == "" &&
			Normalize(r.Get(cols.Pendencia)) == valueDeferido
	}
}

// Resolved Resolvido? = sim
func Resolved(cols Columns) Predicate {
	cols = cols.withDefaults()
	return func(r model.Record) bool {
		return Normalize(r.Get(cols.Resolvido)) == valueSim
	}
}

// Pending Pendência != deferido 且 Resolvido? != sim
func Pending(cols Columns) Predicate {
	cols = cols.withDefaults()
	return func(r model.Record) bool {
		return Normalize(r.Get(cols.Pendencia)) != valueDeferido &&
			Normalize(r.Get(cols.Resolvido)) != valueSim
	}
}

// Filter 返回满足条件的记录子序列，保持原顺序
func Filter(t model.Table, p Predicate) model.Table {
	out := make([]model.Record, 0, len(t.Records))
	for _, r := range t.Records {
		if p(r) {
			out = append(out, r)
		}
	}
	return t.Derive(out)
}

// CheckColumns 表级前置检查（只检查一次，不逐条）
func CheckColumns(t model.Table, cols Columns) error {
	cols = cols.withDefaults()
	for _, col := range []string{cols.Resolvido, cols.Pendencia} {
		if !t.HasColumn(col) {
			return &MissingColumnError{Table: t.Name, Column: col}
		}
	}
	return nil
}

// Result 一个 aba 的分类结果
type Result struct {
	ApprovedUnresolved model.Table
	Resolved           model.Table
	Pending            model.Table
}

// Counts 各分类数量
func (r Result) Counts() map[model.CategoryKind]int {
	return map[model.CategoryKind]int{
		model.CategoryApprovedUnresolved: r.ApprovedUnresolved.Len(),
		model.CategoryResolved:           r.Resolved.Len(),
		model.CategoryPending:            r.Pending.Len(),
	}
}

func emptyResult(t model.Table) Result {
	return Result{
		ApprovedUnresolved: t.Derive(nil),
		Resolved:           t.Derive(nil),
		Pending:            t.Derive(nil),
	}
}

// Classify 对整张表求三个分类。缺列时返回空结果与 *MissingColumnError，由调用方转为警告
func Classify(t model.Table, cols Columns) (Result, error) {
	if err := CheckColumns(t, cols); err != nil {
		return emptyResult(t), err
	}
	return Result{
		ApprovedUnresolved: Filter(t, ApprovedUnresolved(cols)),
		Resolved:           Filter(t, Resolved(cols)),
		Pending:            Filter(t, Pending(cols)),
	}, nil
}

// CountByCategory 标签 -> 数量，仅用于展示
func CountByCategory(categories []model.Category) map[string]int {
	out := make(map[string]int, len(categories))
	for _, c := range categories {
		out[c.Label] = c.Count
	}
	return out
}
