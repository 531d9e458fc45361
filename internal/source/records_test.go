package source

import (
	"reflect"
	"testing"
)

func TestTableFromRows(t *testing.T) {
	rows := [][]string{
		{"Nome", " Pendência ", "", "Resolvido?", "Nome"},
		{"Ana", "deferido"},
		{"", "", "", ""},
		{"Bruno", "indeferido", "x", "sim", "ignorado"},
	}

	table := TableFromRows("SERVIDORES", rows)

	if got, want := table.Columns, []string{"Nome", "Pendência", "Resolvido?"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("columns=%v, want %v", got, want)
	}
	if table.Len() != 2 {
		t.Fatalf("records=%d, want 2", table.Len())
	}
	if got := table.Records[0]["Resolvido?"]; got != "" {
		t.Fatalf("short row padded value=%q, want empty", got)
	}
	if !table.Records[0].Has("Resolvido?") {
		t.Fatalf("short row should still carry every header key")
	}
	if got := table.Records[1]["Nome"]; got != "Bruno" {
		t.Fatalf("duplicate header should keep first column, got %q", got)
	}
}

func TestTableFromRowsEmpty(t *testing.T) {
	table := TableFromRows("VAZIA", nil)
	if table.Len() != 0 || len(table.Columns) != 0 {
		t.Fatalf("unexpected table: %+v", table)
	}
	if table.Records == nil {
		t.Fatalf("records should be an empty slice, not nil")
	}
}
