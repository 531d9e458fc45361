package util

import (
	"fmt"
	"net"
	"reflect"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	cases := []struct {
		goos string
		name string
		args []string
	}{
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", "http://x"}},
		{"darwin", "open", []string{"http://x"}},
		{"linux", "xdg-open", []string{"http://x"}},
	}
	for _, tc := range cases {
		name, args := browserCommand(tc.goos, "http://x")
		if name != tc.name || !reflect.DeepEqual(args, tc.args) {
			t.Errorf("%s: got %s %v", tc.goos, name, args)
		}
	}
	if len(fallbackBrowsers("linux")) == 0 || fallbackBrowsers("plan9") != nil {
		t.Fatalf("unexpected fallbacks")
	}
}

func TestFindAvailablePortSkipsBusyPort(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	busy := ln.Addr().(*net.TCPAddr).Port

	port, err := FindAvailablePort(busy)
	if err != nil {
		t.Fatalf("FindAvailablePort: %v", err)
	}
	if port == busy {
		t.Fatalf("returned busy port %d", port)
	}

	if got := DashboardURL(8501); got != fmt.Sprintf("http://localhost:%d", 8501) {
		t.Fatalf("url=%s", got)
	}
}
