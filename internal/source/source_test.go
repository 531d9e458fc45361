package source

import (
	"context"
	"testing"
)

func TestOpenDispatchesByKind(t *testing.T) {
	ctx := context.Background()
	path := buildWorkbook(t, map[string][][]string{
		"SERVIDORES": {{"Nome", "Pendência", "Resolvido?"}, {"Ana", "deferido", ""}},
	})

	src, err := Open(ctx, Options{Kind: "XLSX", Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := src.(*XLSXSource); !ok {
		t.Fatalf("source type=%T", src)
	}

	if src, err := Open(ctx, Options{Kind: KindXLSX}); err == nil || src != nil {
		t.Fatalf("missing path should fail with a nil source, got %v / %v", src, err)
	}
	if src, err := Open(ctx, Options{Kind: KindCSV, Path: t.TempDir(), Encoding: "ebcdic"}); err == nil || src != nil {
		t.Fatalf("bad csv encoding: %v / %v", src, err)
	}
	if _, err := Open(ctx, Options{Kind: "ods"}); err == nil {
		t.Fatalf("unknown kind should fail")
	}
}
