// Package source 提供外部数据源：列出 aba、读取 aba 的全部记录。
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"importacao/internal/model"
)

var (
	// ErrSourceUnavailable 无法访问或认证数据源
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrTabNotFound 指定的 aba 不存在（或在列出之后消失）
	ErrTabNotFound = errors.New("tab not found")
)

// Source 数据源
type Source interface {
	// ListTabs 返回全部 aba 名称（来源顺序）
	ListTabs(ctx context.Context) ([]string, error)
	// FetchRecords 读取一个 aba，首行为表头
	FetchRecords(ctx context.Context, tab string) (model.Table, error)
}

// Kind 数据源类型
type Kind string

const (
	KindSheets Kind = "sheets"
	KindXLSX   Kind = "xlsx"
	KindXLS    Kind = "xls"
	KindCSV    Kind = "csv"
	KindSQLite Kind = "sqlite"
)

// Options 构造数据源所需参数
type Options struct {
	Kind Kind

	// sheets
	SpreadsheetID   string
	CredentialsFile string
	TokenFile       string

	// xlsx / xls / sqlite 为文件，csv 为目录
	Path      string
	Encoding  string // csv: utf-8 / latin1 / windows-1252
	Delimiter string // csv: 默认 ","
}

// Open 根据配置构造数据源；调用方持有返回值直到运行结束，实现 io.Closer 的需要关闭
func Open(ctx context.Context, opts Options) (Source, error) {
	var (
		src Source
		err error
	)
	switch Kind(strings.ToLower(strings.TrimSpace(string(opts.Kind)))) {
	case KindSheets, "":
		src, err = nonNil(NewSheetsSource(ctx, opts))
	case KindXLSX:
		src, err = nonNil(NewXLSXSource(opts.Path))
	case KindXLS:
		src, err = nonNil(NewXLSSource(opts.Path))
	case KindCSV:
		src, err = nonNil(NewCSVSource(opts.Path, opts.Encoding, opts.Delimiter))
	case KindSQLite:
		src, err = nonNil(NewSQLiteSource(opts.Path))
	default:
		return nil, fmt.Errorf("tipo de fonte desconhecido %q", opts.Kind)
	}
	if err != nil {
		return nil, err
	}
	return src, nil
}

// nonNil 避免把 nil 指针包装成非 nil 接口
func nonNil[T Source](s T, err error) (Source, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSourceUnavailable, fmt.Sprintf(format, args...))
}

func tabNotFound(tab string) error {
	return fmt.Errorf("%w: %q", ErrTabNotFound, tab)
}
