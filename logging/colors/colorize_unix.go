//go:build !windows

package colors

import "fmt"

// EnableColor does nothing: Unix terminals support ANSI escape codes.
func EnableColor() {}

// Colorize wraps s in the ANSI code c.
func Colorize(s any, c Color) string {
	return fmt.Sprintf("\x1b[%dm%v\x1b[0m", c, s)
}
