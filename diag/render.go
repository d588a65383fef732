package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// RenderOptions controls human-readable diagnostic output.
type RenderOptions struct {
	// NoColor disables ANSI coloring regardless of terminal detection.
	NoColor bool
}

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	infoColor = color.New(color.FgCyan)
	locColor  = color.New(color.Faint)
)

// Render writes one line per diagnostic, location column padded to a common
// display width so messages line up.
func Render(w io.Writer, b *Bag, opts RenderOptions) error {
	if w == nil || b == nil {
		return nil
	}
	widest := 0
	for _, d := range b.Items() {
		if lw := runewidth.StringWidth(d.Primary.String()); lw > widest {
			widest = lw
		}
	}
	for _, d := range b.Items() {
		sev := d.Severity.String()
		if !opts.NoColor {
			switch d.Severity {
			case SevError:
				sev = errColor.Sprint(sev)
			case SevWarning:
				sev = warnColor.Sprint(sev)
			default:
				sev = infoColor.Sprint(sev)
			}
		}
		loc := runewidth.FillRight(d.Primary.String(), widest)
		if !opts.NoColor {
			loc = locColor.Sprint(loc)
		}
		if _, err := fmt.Fprintf(w, "%s %s %s %s\n", sev, d.Code, loc, d.Message); err != nil {
			return err
		}
		for _, n := range d.Notes {
			if _, err := fmt.Fprintf(w, "  note: %s: %s\n", n.Loc, n.Msg); err != nil {
				return err
			}
		}
	}
	return nil
}
