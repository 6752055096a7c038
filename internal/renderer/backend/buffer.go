package backend

import "github.com/dshills/keystorm/internal/renderer/core"

// ScreenBuffer is a double-buffered cell grid. Painters write into the back
// buffer; FlushTo pushes only the cells that differ from the front buffer
// and then promotes the back buffer.
type ScreenBuffer struct {
	width  int
	height int
	back   []core.Cell
	front  []core.Cell
	valid  bool
}

// NewScreenBuffer returns a buffer of the given size, clamped to at least
// 1x1.
func NewScreenBuffer(width, height int) *ScreenBuffer {
	sb := &ScreenBuffer{}
	sb.Resize(width, height)
	return sb
}

// Resize reallocates both buffers and forces the next flush to repaint
// everything.
func (sb *ScreenBuffer) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	sb.width = width
	sb.height = height
	sb.back = make([]core.Cell, width*height)
	sb.front = make([]core.Cell, width*height)
	sb.valid = false
	sb.clearBack()
}

// Size returns the buffer dimensions.
func (sb *ScreenBuffer) Size() (width, height int) {
	return sb.width, sb.height
}

// Set writes one back-buffer cell. Out-of-bounds writes are dropped.
func (sb *ScreenBuffer) Set(x, y int, cell core.Cell) {
	if x < 0 || x >= sb.width || y < 0 || y >= sb.height {
		return
	}
	sb.back[y*sb.width+x] = cell
}

// Get reads one back-buffer cell.
func (sb *ScreenBuffer) Get(x, y int) core.Cell {
	if x < 0 || x >= sb.width || y < 0 || y >= sb.height {
		return core.EmptyCell()
	}
	return sb.back[y*sb.width+x]
}

// Fill sets every back-buffer cell inside rect.
func (sb *ScreenBuffer) Fill(rect core.ScreenRect, cell core.Cell) {
	for y := rect.Top; y < rect.Bottom; y++ {
		for x := rect.Left; x < rect.Right; x++ {
			sb.Set(x, y, cell)
		}
	}
}

// Clear resets the whole back buffer to empty cells.
func (sb *ScreenBuffer) Clear() {
	sb.clearBack()
}

func (sb *ScreenBuffer) clearBack() {
	empty := core.EmptyCell()
	for i := range sb.back {
		sb.back[i] = empty
	}
}

// SetString writes s horizontally starting at (x, y), clipping at the right
// edge, and returns the column after the last written cell.
func (sb *ScreenBuffer) SetString(x, y int, s string, style core.Style) int {
	for _, r := range s {
		if x >= sb.width {
			break
		}
		sb.Set(x, y, core.NewStyledCell(r, style))
		x++
	}
	return x
}

// MergeStyle overlays style onto the cells inside rect, keeping their
// runes. Used for selection rectangles and cursor cells, which restyle
// text the plan already painted.
func (sb *ScreenBuffer) MergeStyle(rect core.ScreenRect, style core.Style) {
	for y := rect.Top; y < rect.Bottom; y++ {
		for x := rect.Left; x < rect.Right; x++ {
			cell := sb.Get(x, y)
			cell.Style = cell.Style.Merge(style)
			sb.Set(x, y, cell)
		}
	}
}

// DirtyCount returns how many cells FlushTo would push right now.
func (sb *ScreenBuffer) DirtyCount() int {
	if !sb.valid {
		return len(sb.back)
	}
	n := 0
	for i := range sb.back {
		if sb.back[i] != sb.front[i] {
			n++
		}
	}
	return n
}

// FlushTo pushes changed cells to dst and promotes the back buffer to
// front. The first flush after a resize pushes everything.
func (sb *ScreenBuffer) FlushTo(dst interface{ SetCell(x, y int, cell core.Cell) }) {
	for y := 0; y < sb.height; y++ {
		row := y * sb.width
		for x := 0; x < sb.width; x++ {
			i := row + x
			if sb.valid && sb.back[i] == sb.front[i] {
				continue
			}
			dst.SetCell(x, y, sb.back[i])
			sb.front[i] = sb.back[i]
		}
	}
	sb.valid = true
}
