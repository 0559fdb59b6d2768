package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders today's progress as [████░░░░] 12/30.
// The bar turns from red through yellow to green as done approaches total.
func RenderProgress(done, total, width int) string {
	if width < 2 {
		width = 2
	}
	pct := 1.0
	if total > 0 {
		pct = min(max(float64(done)/float64(total), 0), 1)
	}

	filled := int(pct * float64(width))
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	if pct < 0.33 {
		style = StyleRed
	} else if pct < 0.66 {
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %d/%d", style.Render(bar), done, total)
}
