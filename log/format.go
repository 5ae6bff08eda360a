package log

import (
	"os"

	logging "github.com/op/go-logging"
)

var (
	textFormat    = logging.MustStringFormatter(`%{time:2006-01-02T15:04:05.000Z07:00} %{level:.4s} %{shortfile} %{message}`)
	textFormatTTY = logging.MustStringFormatter(`%{color}%{time:15:04:05.000} %{level:.4s}%{color:reset} %{message}`)
)

// GetTextFormat picks the colored format when attached to a terminal.
func GetTextFormat() logging.Formatter {
	stat, err := os.Stdin.Stat()
	if err == nil && stat.Mode()&os.ModeCharDevice != 0 {
		return textFormatTTY
	}
	return textFormat
}
