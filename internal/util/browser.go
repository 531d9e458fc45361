package util

import (
	"fmt"
	"net"
	"os/exec"
	"runtime"
)

// browserCommand 各平台打开 URL 的命令
func browserCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		// rundll32 在 Windows 7 上也可用
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}

// fallbackBrowsers 主命令失败时依次尝试
func fallbackBrowsers(goos string) []string {
	switch goos {
	case "windows":
		return []string{"explorer"}
	case "linux":
		return []string{"google-chrome", "firefox", "chromium-browser", "sensible-browser"}
	default:
		return nil
	}
}

// OpenBrowser 打开默认浏览器
func OpenBrowser(url string) error {
	name, args := browserCommand(runtime.GOOS, url)
	return exec.Command(name, args...).Start()
}

// OpenBrowserWithFallback 带降级方案的浏览器打开（看板地址与 OAuth 授权页共用）
func OpenBrowserWithFallback(url string) error {
	err := OpenBrowser(url)
	if err == nil {
		return nil
	}
	for _, browser := range fallbackBrowsers(runtime.GOOS) {
		if exec.Command(browser, url).Start() == nil {
			return nil
		}
	}
	return fmt.Errorf("abrir navegador: %w", err)
}

// FindAvailablePort 从 startPort 开始查找可监听的端口，最多尝试 20 个
func FindAvailablePort(startPort int) (int, error) {
	for port := startPort; port < startPort+20; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			continue
		}
		_ = ln.Close()
		return port, nil
	}
	return 0, fmt.Errorf("nenhuma porta livre entre %d e %d", startPort, startPort+19)
}

// DashboardURL 本地看板地址
func DashboardURL(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}
