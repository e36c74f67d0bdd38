package report

import (
	"fmt"
	"os/exec"
	"runtime"
)

// SystemOpener hands the file to the desktop's default viewer
type SystemOpener struct{}

func (SystemOpener) Open(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		// empty quoted title so start treats path as the target
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

// NoopOpener is used on headless hosts
type NoopOpener struct{}

func (NoopOpener) Open(string) error { return nil }
