package source

import (
	"context"
	"database/sql"
	"net/url"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"importacao/internal/model"
)

// SQLiteSource SQLite 数据库：每张表对应一个 aba，只读打开
type SQLiteSource struct {
	path string
	db   *sql.DB
}

// NewSQLiteSource 创建 SQLite 数据源
func NewSQLiteSource(path string) (*SQLiteSource, error) {
	if path == "" {
		return nil, unavailable("caminho do banco sqlite não configurado")
	}

	dsn, err := sqliteDSN(path)
	if err != nil {
		return nil, unavailable("caminho %s: %v", path, err)
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, unavailable("abrir %s: %v", path, err)
	}

	// SQLite 建议单连接
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &SQLiteSource{path: path, db: db}, nil
}

// sqliteDSN 只读 URI；路径中的 ? 和 # 会被转义
func sqliteDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs), RawQuery: "mode=ro"}
	return u.String(), nil
}

// Close 关闭数据库连接
func (s *SQLiteSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ListTabs 列出用户表
func (s *SQLiteSource) ListTabs(ctx context.Context) ([]string, error) {
	if err := s.db.PingContext(ctx); err != nil {
		return nil, unavailable("conectar %s: %v", s.path, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY rowid
	`)
	if err != nil {
		return nil, unavailable("listar tabelas: %v", err)
	}
	defer rows.Close()

	tabs := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, unavailable("listar tabelas: %v", err)
		}
		tabs = append(tabs, name)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("listar tabelas: %v", err)
	}
	return tabs, nil
}

// FetchRecords 读取整张表（按 rowid 顺序）
func (s *SQLiteSource) FetchRecords(ctx context.Context, tab string) (model.Table, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = ?`, tab,
	).Scan(&exists)
	if err != nil {
		return model.Table{}, unavailable("consultar %q: %v", tab, err)
	}
	if exists == 0 {
		return model.Table{}, tabNotFound(tab)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(tab))
	if err != nil {
		return model.Table{}, unavailable("ler %q: %v", tab, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return model.Table{}, unavailable("ler colunas de %q: %v", tab, err)
	}

	out := [][]string{columns}
	values := make([]sql.NullString, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return model.Table{}, unavailable("ler %q: %v", tab, err)
		}
		row := make([]string, len(columns))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return model.Table{}, unavailable("ler %q: %v", tab, err)
	}

	return TableFromRows(tab, out), nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
