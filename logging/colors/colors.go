// Package colors provides the ANSI coloring used by console log output. Colors only reach the console writer; the
// structured writers receive the uncolored text.
package colors

import "fmt"

// Color is an ANSI SGR code.
type Color int

const (
	// BOLD is the ANSI code for bold text
	BOLD Color = 1
	// RED is the ANSI code for red
	RED Color = 31
	// GREEN is the ANSI code for green
	GREEN Color = 32
	// YELLOW is the ANSI code for yellow
	YELLOW Color = 33
	// BLUE is the ANSI code for blue
	BLUE Color = 34
	// CYAN is the ANSI code for cyan
	CYAN Color = 36
)

// LEFT_ARROW marks info level console lines in place of a level name.
const LEFT_ARROW = "⇾"

// ColorFunc colors a single log argument. A ColorFunc passed to a Logger applies to the arguments that follow it.
type ColorFunc = func(s any) string

func init() {
	EnableColor()
}

// colorizeBold wraps s in the color c and bold.
func colorizeBold(s any, c Color) string {
	return Colorize(Colorize(s, c), BOLD)
}

// Reset leaves its input uncolored. It ends the color context of a previous ColorFunc.
func Reset(s any) string {
	return fmt.Sprintf("%v", s)
}

// Bold highlights values such as seeds, paths and run IDs.
func Bold(s any) string {
	return Colorize(s, BOLD)
}

// GreenBold marks arbitrary-mode addresses and info level lines.
func GreenBold(s any) string {
	return colorizeBold(s, GREEN)
}

// CyanBold marks trace level lines.
func CyanBold(s any) string {
	return colorizeBold(s, CYAN)
}

// BlueBold marks debug level lines.
func BlueBold(s any) string {
	return colorizeBold(s, BLUE)
}

// YellowBold marks warnings.
func YellowBold(s any) string {
	return colorizeBold(s, YELLOW)
}

// RedBold marks errors.
func RedBold(s any) string {
	return colorizeBold(s, RED)
}
