package exporter

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"importacao/internal/model"
)

func sampleReport() *model.Report {
	servidores := model.Table{
		Name:    "SERVIDORES",
		Columns: []string{"Nome", "Pendência", "Resolvido?"},
		Records: []model.Record{
			{"Nome": "Ana", "Pendência": "deferido", "Resolvido?": ""},
		},
	}
	pendentes := model.Table{
		Name:    "Servidores com Pendências",
		Columns: []string{"Nome", "Pendência", "Resolvido?"},
		Records: []model.Record{
			{"Nome": "Carla", "Pendência": "em análise"},
			{"Nome": "Davi", "Pendência": "", "Resolvido?": "não"},
		},
	}
	return &model.Report{
		Categories: []model.Category{
			model.NewCategory(model.CategoryApprovedUnresolved, "SERVIDORES", "SERVIDORES", "blue", servidores),
			model.NewCategory(model.CategoryPending, "Servidores com Pendências", "SERVIDORES", "red", pendentes),
		},
		Summary: []model.SummaryEntry{
			{Label: "SERVIDORES", Count: 4, Color: "blue"},
			{Label: "Servidores com Pendências", Count: 2, Color: "red"},
		},
		Warnings: []model.Warning{
			{Kind: model.WarningTabNotFound, Tab: "ESTAGIÁRIOS", Message: "Aba 'ESTAGIÁRIOS' não encontrada na planilha."},
		},
	}
}

func reopen(t *testing.T, f *excelize.File) *excelize.File {
	t.Helper()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	out, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	t.Cleanup(func() { _ = out.Close() })
	return out
}

func TestExportWorkbookLayout(t *testing.T) {
	var stages, sheets []string
	f, err := NewExporter("").ExportWithProgress(sampleReport(), func(ev ProgressEvent) {
		stages = append(stages, ev.Stage)
		if ev.Stage == StageSheet {
			sheets = append(sheets, ev.Sheet)
		}
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	defer f.Close()

	out := reopen(t, f)

	want := []string{"Importações", "SERVIDORES", "Servidores com Pendências", "Avisos"}
	if got := out.GetSheetList(); !reflect.DeepEqual(got, want) {
		t.Fatalf("sheets=%v, want %v", got, want)
	}

	rows, err := out.GetRows(SummarySheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	wantRows := [][]string{
		{"Categoria", "Quantidade"},
		{"SERVIDORES", "4"},
		{"Servidores com Pendências", "2"},
	}
	if !reflect.DeepEqual(rows, wantRows) {
		t.Fatalf("summary rows=%v, want %v", rows, wantRows)
	}

	pend, err := out.GetRows("Servidores com Pendências")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(pend) != 3 || pend[0][0] != "Nome" || pend[1][0] != "Carla" || pend[2][2] != "não" {
		t.Fatalf("pending rows=%v", pend)
	}

	if stages[0] != StageSummary || stages[len(stages)-1] != StageDone {
		t.Fatalf("stages=%v", stages)
	}
	if want := []string{"SERVIDORES", "Servidores com Pendências"}; !reflect.DeepEqual(sheets, want) {
		t.Fatalf("sheet events=%v, want %v", sheets, want)
	}
}

func TestExportWithoutWarningsOrSummary(t *testing.T) {
	f, err := NewExporter("Gráfico").Export(&model.Report{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	defer f.Close()

	if got := reopen(t, f).GetSheetList(); !reflect.DeepEqual(got, []string{SummarySheet}) {
		t.Fatalf("sheets=%v", got)
	}
}

func TestExportNilReport(t *testing.T) {
	if _, err := NewExporter("").Export(nil); err == nil {
		t.Fatalf("expected error for nil report")
	}
}

func TestSheetName(t *testing.T) {
	used := map[string]bool{strings.ToLower(SummarySheet): true}

	cases := []struct {
		label string
		want  string
	}{
		{"SERVIDORES", "SERVIDORES"},
		{"servidores", "servidores (2)"},
		{"A/B: C?*[x]", "A-B- C---x-"},
		{"   ", "Aba"},
		{"importações", "importações (2)"},
	}
	for _, tc := range cases {
		if got := SheetName(tc.label, used); got != tc.want {
			t.Errorf("SheetName(%q)=%q, want %q", tc.label, got, tc.want)
		}
	}

	long := strings.Repeat("Á", 40)
	first := SheetName(long, used)
	second := SheetName(long, used)
	if utf8.RuneCountInString(first) != 31 || utf8.RuneCountInString(second) > 31 || first == second {
		t.Fatalf("long names: %q / %q", first, second)
	}
}
