package log

import (
	"os"
	"runtime"
	"strings"

	"github.com/gookit/color"
)

var (
	EnableColor = true
)

type Color struct {
	Open   func(a ...any) string
	Closed func(a ...any) string
	Error  func(a ...any) string
	Time   func(a ...any) string
	Title  func(a ...any) string
	Banner func(a ...any) string
	Bold   func(a ...any) string
	Red    func(a ...any) string
	Green  func(a ...any) string
}

var LogColor *Color

func init() {
	detectTerminal()

	if LogColor == nil {
		LogColor = NewColor()
	}
}

// 检测终端颜色支持
func detectTerminal() {
	if runtime.GOOS == "windows" {
		_, wt := os.LookupEnv("WT_SESSION")
		_, ansi := os.LookupEnv("ANSICON")
		EnableColor = wt || ansi
	} else {
		fi, err := os.Stdout.Stat()
		EnableColor = err == nil && (fi.Mode()&os.ModeCharDevice) != 0
	}
	color.Enable = EnableColor
}

func NewColor() *Color {
	return &Color{
		Open:   color.FgLightGreen.Render,
		Closed: color.Gray.Render,
		Error:  color.FgLightRed.Render,
		Time:   color.Gray.Render,
		Title:  color.FgLightBlue.Render,
		Banner: color.FgLightGreen.Render,
		Bold:   color.Bold.Render,
		Red:    color.FgLightRed.Render,
		Green:  color.FgLightGreen.Render,
	}
}

// Status colors a port status string.
func (c *Color) Status(status string) string {
	switch strings.ToLower(status) {
	case "open":
		return c.Open(status)
	case "closed":
		return c.Closed(status)
	default:
		return c.Error(status)
	}
}
