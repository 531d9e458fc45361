package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestCSVSource(t *testing.T) {
	dir := t.TempDir()
	content := "Nome;Pendência;Resolvido?\nAna;Deferido;\nBruno;INDEFERIDO;sim\nCarla;deferido;NA\n"
	if err := os.WriteFile(filepath.Join(dir, "SERVIDORES.csv"), []byte(content), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "leia-me.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write txt: %v", err)
	}

	src, err := NewCSVSource(dir, "", ";")
	if err != nil {
		t.Fatalf("NewCSVSource: %v", err)
	}
	ctx := context.Background()

	tabs, err := src.ListTabs(ctx)
	if err != nil {
		t.Fatalf("ListTabs: %v", err)
	}
	if !reflect.DeepEqual(tabs, []string{"SERVIDORES"}) {
		t.Fatalf("tabs=%v", tabs)
	}

	table, err := src.FetchRecords(ctx, "SERVIDORES")
	if err != nil {
		t.Fatalf("FetchRecords: %v", err)
	}
	if got, want := table.Columns, []string{"Nome", "Pendência", "Resolvido?"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("columns=%v, want %v", got, want)
	}
	if table.Len() != 3 {
		t.Fatalf("records=%d, want 3", table.Len())
	}
	if got := table.Records[2]["Resolvido?"]; got != "NA" {
		t.Fatalf("NA must stay literal text, got %q", got)
	}

	if _, err := src.FetchRecords(ctx, "ESTAGIÁRIOS"); !errors.Is(err, ErrTabNotFound) {
		t.Fatalf("err=%v, want ErrTabNotFound", err)
	}
}

func TestCSVSourceLatin1(t *testing.T) {
	dir := t.TempDir()
	encoded, err := charmap.ISO8859_1.NewEncoder().String("Nome,Pendência,Resolvido?\nJoão,deferido,sim\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ESTAGIARIOS.csv"), []byte(encoded), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	src, err := NewCSVSource(dir, "latin1", "")
	if err != nil {
		t.Fatalf("NewCSVSource: %v", err)
	}
	table, err := src.FetchRecords(context.Background(), "ESTAGIARIOS")
	if err != nil {
		t.Fatalf("FetchRecords: %v", err)
	}
	if !table.HasColumn("Pendência") {
		t.Fatalf("decoded header missing, columns=%v", table.Columns)
	}
	if got := table.Records[0]["Nome"]; got != "João" {
		t.Fatalf("Nome=%q, want João", got)
	}
}

func TestCSVSourceRejectsUnknownEncoding(t *testing.T) {
	if _, err := NewCSVSource(t.TempDir(), "utf-16", ""); err == nil {
		t.Fatal("expected error for unsupported encoding")
	}
}

func TestCSVSourceMissingDir(t *testing.T) {
	src, err := NewCSVSource(filepath.Join(t.TempDir(), "nada"), "", "")
	if err != nil {
		t.Fatalf("NewCSVSource: %v", err)
	}
	if _, err := src.ListTabs(context.Background()); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err=%v, want ErrSourceUnavailable", err)
	}
}

func writeCSV(t *testing.T, dir, tab, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, tab+".csv"), []byte(content), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
}

func TestCSVSourceRowShapes(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "curta", "Nome,Pendência,Resolvido?\nAna,deferido\nBruno,deferido,sim,extra\n,,\n")
	writeCSV(t, dir, "branco", "Nome,,Pendência,Resolvido?\nAna,x,deferido,\n")
	writeCSV(t, dir, "cabecalho", "Nome,Pendência,Resolvido?\n")

	src, err := NewCSVSource(dir, "", "")
	if err != nil {
		t.Fatalf("NewCSVSource: %v", err)
	}
	ctx := context.Background()

	short, err := src.FetchRecords(ctx, "curta")
	if err != nil {
		t.Fatalf("short rows: %v", err)
	}
	if short.Len() != 2 {
		t.Fatalf("records=%d, want 2", short.Len())
	}
	if got := short.Records[0]["Resolvido?"]; got != "" {
		t.Fatalf("short row must be padded with empty string, got %q", got)
	}
	if got := short.Records[1]["Resolvido?"]; got != "sim" {
		t.Fatalf("Resolvido?=%q, want sim", got)
	}

	blank, err := src.FetchRecords(ctx, "branco")
	if err != nil {
		t.Fatalf("blank header: %v", err)
	}
	if got, want := blank.Columns, []string{"Nome", "Pendência", "Resolvido?"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("columns=%v, want %v", got, want)
	}
	if got := blank.Records[0]["Pendência"]; got != "deferido" {
		t.Fatalf("Pendência=%q, want deferido", got)
	}

	headerOnly, err := src.FetchRecords(ctx, "cabecalho")
	if err != nil {
		t.Fatalf("header only: %v", err)
	}
	if headerOnly.Len() != 0 || !headerOnly.HasColumn("Resolvido?") {
		t.Fatalf("header-only table=%+v", headerOnly)
	}
}
