package core

// Color is the foreground color of a screen cell.
type Color uint8

// Cell colors. ColorCount is the number of colors, not a color.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
	ColorCount
)

// ansiCodes holds the 256-color terminal code of every color.
var ansiCodes = [ColorCount]string{
	ColorRed:           "1",
	ColorGreen:         "2",
	ColorYellow:        "3",
	ColorBlue:          "4",
	ColorMagenta:       "5",
	ColorCyan:          "6",
	ColorWhite:         "7",
	ColorBrightRed:     "9",
	ColorBrightGreen:   "10",
	ColorBrightYellow:  "11",
	ColorBrightBlue:    "12",
	ColorBrightMagenta: "13",
	ColorBrightCyan:    "14",
	ColorBrightWhite:   "15",
	ColorOrange:        "208",
	ColorGray:          "245",
}

// ANSI returns the 256-color code of c.
// ColorDefault and out-of-range colors return "" (terminal default).
func (c Color) ANSI() string {
	if c >= ColorCount {
		return ""
	}
	return ansiCodes[c]
}

// Bold reports whether c is drawn bold. Game-over titles and banners use these.
func (c Color) Bold() bool {
	return c == ColorBrightRed || c == ColorBrightCyan
}
