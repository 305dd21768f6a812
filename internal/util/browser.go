package util

import (
	"os/exec"
	"runtime"
)

// browserCommand 各平台打开 URL 的首选命令
func browserCommand(goos, url string) *exec.Cmd {
	switch goos {
	case "windows":
		// rundll32 比 cmd /c start 在旧版 Windows 上更稳定
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		return exec.Command("open", url)
	default:
		return exec.Command("xdg-open", url)
	}
}

// OpenBrowser 打开默认浏览器
func OpenBrowser(url string) error {
	return browserCommand(runtime.GOOS, url).Start()
}

// OpenBrowserWithFallback 首选方式失败时依次尝试备选浏览器
func OpenBrowserWithFallback(url string) error {
	err := OpenBrowser(url)
	if err == nil {
		return nil
	}

	for _, name := range fallbackBrowsers(runtime.GOOS) {
		if e := exec.Command(name, url).Start(); e == nil {
			return nil
		}
	}
	return err
}

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
