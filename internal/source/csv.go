package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"importacao/internal/model"
)

// CSVSource 目录中每个 <aba>.csv 文件对应一个 aba
type CSVSource struct {
	dir       string
	encoding  string
	delimiter rune
}

// NewCSVSource 创建 csv 目录数据源
func NewCSVSource(dir, encoding, delimiter string) (*CSVSource, error) {
	if dir == "" {
		return nil, unavailable("diretório csv não configurado")
	}
	delim := ','
	if delimiter != "" {
		r, size := utf8.DecodeRuneInString(delimiter)
		if size != len(delimiter) {
			return nil, fmt.Errorf("delimitador csv inválido %q", delimiter)
		}
		delim = r
	}
	switch normalizeEncoding(encoding) {
	case "utf-8", "latin1", "windows-1252":
	default:
		return nil, fmt.Errorf("codificação csv não suportada %q", encoding)
	}
	return &CSVSource{dir: dir, encoding: normalizeEncoding(encoding), delimiter: delim}, nil
}

func normalizeEncoding(enc string) string {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", "utf8", "utf-8":
		return "utf-8"
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return "latin1"
	case "windows-1252", "cp1252":
		return "windows-1252"
	default:
		return enc
	}
}

func (s *CSVSource) files() (map[string]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, unavailable("diretório %s: %v", s.dir, err)
	}
	out := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		tab := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		out[tab] = filepath.Join(s.dir, e.Name())
	}
	return out, nil
}

// ListTabs 列出 csv 文件名（按字母序）
func (s *CSVSource) ListTabs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("%v", err)
	}
	files, err := s.files()
	if err != nil {
		return nil, err
	}
	tabs := make([]string, 0, len(files))
	for tab := range files {
		tabs = append(tabs, tab)
	}
	sort.Strings(tabs)
	return tabs, nil
}

// FetchRecords 读取 <tab>.csv，全部列按字符串读取
func (s *CSVSource) FetchRecords(ctx context.Context, tab string) (model.Table, error) {
	if err := ctx.Err(); err != nil {
		return model.Table{}, unavailable("%v", err)
	}
	files, err := s.files()
	if err != nil {
		return model.Table{}, err
	}
	path, ok := files[tab]
	if !ok {
		return model.Table{}, tabNotFound(tab)
	}

	f, err := os.Open(path)
	if err != nil {
		return model.Table{}, unavailable("abrir %s: %v", path, err)
	}
	defer f.Close()

	rows, err := s.readRows(f)
	if err != nil {
		return model.Table{}, unavailable("ler %s: %v", path, err)
	}
	if len(rows) <= 1 {
		return TableFromRows(tab, rows), nil
	}

	// 表头用位置名交给 gota，真实表头（含空列、重复列）由 TableFromRows 处理
	header := rows[0]
	records := make([][]string, 0, len(rows))
	records = append(records, positionalNames(len(header)))
	records = append(records, rows[1:]...)

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{}),
	)
	if df.Err != nil {
		return model.Table{}, unavailable("ler %s: %v", path, df.Err)
	}

	out := df.Records()
	out[0] = header
	return TableFromRows(tab, out), nil
}

// readRows 读取原始行，每行补齐或截断到表头宽度
func (s *CSVSource) readRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(s.decode(r))
	reader.Comma = s.delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return rows, nil
	}
	width := len(rows[0])
	for i := 1; i < len(rows); i++ {
		switch {
		case len(rows[i]) < width:
			rows[i] = append(rows[i], make([]string, width-len(rows[i]))...)
		case len(rows[i]) > width:
			rows[i] = rows[i][:width]
		}
	}
	return rows, nil
}

func positionalNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("c%d", i)
	}
	return names
}

func (s *CSVSource) decode(r io.Reader) io.Reader {
	switch s.encoding {
	case "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case "windows-1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		return r
	}
}
