package backend

import (
	"github.com/dshills/keystorm/internal/integration/terminal"
	"github.com/dshills/keystorm/internal/renderer/core"
	"github.com/dshills/keystorm/internal/renderer/highlight"
	"github.com/dshills/keystorm/internal/renderer/plan"
)

// StyleResolver turns a highlight id into a concrete style. Virtual text
// (wrap indicators, inline annotations) with no highlight of its own falls
// back to Virtual.
type StyleResolver struct {
	Theme    *highlight.Theme
	Registry *highlight.Registry
	Base     core.Style
	Virtual  core.Style
}

// Resolve maps a span's highlight to the style it paints with.
func (r StyleResolver) Resolve(h highlight.Highlight, hasHi, isVirtual bool) core.Style {
	if hasHi && r.Theme != nil {
		return r.Base.Merge(r.Theme.StyleForHighlight(h, r.Registry))
	}
	if isVirtual {
		return r.Virtual
	}
	return r.Base
}

// PaintPlan blits p into buf at area: background, spans, selection rects,
// then cursors, so later layers restyle what earlier ones drew. Rows the
// plan has no line for are painted as background only.
func PaintPlan(buf *ScreenBuffer, area core.ScreenRect, p plan.RenderPlan, resolve StyleResolver) {
	buf.Fill(area, core.Cell{Rune: ' ', Style: resolve.Base, Width: 1})

	for _, line := range p.Lines {
		y := area.Top + line.Row
		if y < area.Top || y >= area.Bottom {
			continue
		}
		for _, span := range line.Spans {
			style := resolve.Resolve(span.Highlight, span.HasHi, span.IsVirtual)
			x := area.Left + span.Col
			for _, r := range span.Text {
				if x >= area.Right {
					break
				}
				if x >= area.Left {
					buf.Set(x, y, core.NewStyledCell(r, style))
				}
				x++
			}
		}
	}

	for _, sel := range p.Selections {
		rect := core.NewScreenRect(
			area.Top+sel.Rect.Top, area.Left+sel.Rect.Left,
			area.Top+sel.Rect.Bottom, area.Left+sel.Rect.Right,
		).Intersect(area)
		buf.MergeStyle(rect, sel.Style)
	}

	for _, cur := range p.Cursors {
		x := area.Left + cur.Pos.Col
		y := area.Top + cur.Pos.Row
		if !area.Contains(core.ScreenPos{Row: y, Col: x}) {
			continue
		}
		cell := buf.Get(x, y)
		cell.Style = cell.Style.Merge(cur.Style)
		buf.Set(x, y, cell)
	}
}

// PaintTerminal blits a terminal pane into buf at area: every row on a full
// rebuild, only the snapshot's dirty rows otherwise. Rows are read through
// the adapter's screen after the snapshot, the same pin-then-copy split the
// adapter's locking is built around.
func PaintTerminal(buf *ScreenBuffer, area core.ScreenRect, snap terminal.ScreenSnapshot, screen *terminal.Screen, base core.Style) {
	rows := snap.DirtyRows
	if snap.NeedsFullRebuild {
		rows = rows[:0]
		for y := 0; y < snap.Height; y++ {
			rows = append(rows, y)
		}
		buf.Fill(area, core.Cell{Rune: ' ', Style: base, Width: 1})
	}

	for _, row := range rows {
		y := area.Top + row
		if y < area.Top || y >= area.Bottom {
			continue
		}
		cells := screen.Line(row)
		x := area.Left
		for _, cell := range cells {
			if x >= area.Right {
				break
			}
			if cell.Width == 0 {
				// Trailing half of a wide rune; the wide cell already
				// covers this column.
				x++
				continue
			}
			buf.Set(x, y, convertTerminalCell(cell, base))
			x++
		}
		for ; x < area.Right; x++ {
			buf.Set(x, y, core.Cell{Rune: ' ', Style: base, Width: 1})
		}
	}
}

func convertTerminalCell(cell terminal.Cell, base core.Style) core.Cell {
	style := base
	style.Foreground = convertTerminalColor(cell.Foreground)
	style.Background = convertTerminalColor(cell.Background)
	if cell.Attributes.Has(terminal.AttrBold) {
		style.Attributes |= core.AttrBold
	}
	if cell.Attributes.Has(terminal.AttrDim) {
		style.Attributes |= core.AttrDim
	}
	if cell.Attributes.Has(terminal.AttrItalic) {
		style.Attributes |= core.AttrItalic
	}
	if cell.Attributes.Has(terminal.AttrReverse) {
		style.Attributes |= core.AttrReverse
	}
	if cell.Attributes.Has(terminal.AttrStrike) {
		style.Attributes |= core.AttrStrikethrough
	}
	if cell.Attributes.Has(terminal.AttrUnderline) {
		style.Underline = core.UnderlineSingle
	}
	width := cell.Width
	if width < 1 {
		width = 1
	}
	return core.Cell{Rune: cell.Rune, Style: style, Width: width}
}

func convertTerminalColor(c terminal.Color) core.Color {
	switch {
	case c.Default:
		return core.ColorDefault
	case c.Index >= 0 && c.Index <= 255:
		return core.ColorFromIndex(uint8(c.Index))
	default:
		return core.ColorFromRGB(c.R, c.G, c.B)
	}
}
