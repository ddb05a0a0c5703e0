package theme

import "github.com/charmbracelet/lipgloss"

// Color is an alias for lipgloss.Color for convenience
type Color = lipgloss.Color

// Brand colors
const (
	ColorPrimary   Color = "99" // Purple - app name, titles
	ColorSecondary Color = "86" // Cyan - subtitles
)

// Process state colors
const (
	ColorExited   Color = "8" // Gray - exited
	ColorRunning  Color = "2" // Green - running
	ColorStarting Color = "3" // Yellow - starting
)

// Tool call status colors
const (
	ColorToolCompleted Color = "2"   // Green
	ColorToolError     Color = "1"   // Red
	ColorToolPending   Color = "245" // Light gray
	ColorToolRunning   Color = "33"  // Blue
)

// UI semantic colors
const (
	ColorError     Color = "196" // Bright red
	ColorHighlight Color = "255" // White - emphasis
	ColorMuted     Color = "241" // Gray - secondary text
	ColorNormal    Color = "250" // Default text
	ColorSubtle    Color = "245" // Light gray - labels
	ColorSuccess   Color = "46"  // Bright green
	ColorThinking  Color = "141" // Purple
)
