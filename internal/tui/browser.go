package tui

import (
	"os/exec"
	"runtime"
)

func openURLInBrowser(url string) error {
	return browserCommand(runtime.GOOS, url).Run()
}

// browserCommand picks the platform's URL opener.
func browserCommand(goos, url string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", url)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return exec.Command("xdg-open", url)
	}
}
