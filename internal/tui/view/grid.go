package view

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/clinicdesk/clinicweek/internal/calendar"
	"github.com/clinicdesk/clinicweek/internal/dateutil"
)

// TimeColumnWidth is the width of the hour label column, separator included.
const TimeColumnWidth = 7

// GridStyles holds the styles used to paint the week grid.
type GridStyles struct {
	Time        lipgloss.Style
	Now         lipgloss.Style
	Separator   lipgloss.Style
	Cell        lipgloss.Style
	CellHour    lipgloss.Style // empty cell on a full-hour row
	CellFocus   lipgloss.Style // empty cell in the focused day
	Header      lipgloss.Style
	HeaderToday lipgloss.Style
	HeaderFocus lipgloss.Style
	Block       func(b calendar.Block, alt, selected bool) lipgloss.Style
}

// GridState is everything needed to draw the week grid.
type GridState struct {
	Days       [7]calendar.DayLayout
	Geometry   calendar.Geometry
	Role       calendar.Role
	Now        time.Time
	TodayCol   int // -1 when today is outside the week
	FocusDay   int
	Selected   string // item id
	ColWidth   int
	RowMinutes int
	Scroll     int // first body row drawn
	Height     int // body rows available
	Styles     GridStyles
}

// GridRows returns the number of body rows of the grid.
func GridRows(g calendar.Geometry, rowMinutes int) int {
	rowPx := rowPixels(g, rowMinutes)
	if rowPx <= 0 {
		return 0
	}
	return max(int(math.Ceil(g.GridHeight()/rowPx-1e-9)), 1)
}

func rowPixels(g calendar.Geometry, rowMinutes int) float64 {
	return g.PixelsPerHour * float64(rowMinutes) / 60
}

// BlockRows returns the half-open row range covered by b. Blocks that lie
// outside the grid hours are pinned to its first or last row.
func BlockRows(b calendar.Block, g calendar.Geometry, rowMinutes int) (int, int) {
	rows := GridRows(g, rowMinutes)
	rowPx := rowPixels(g, rowMinutes)
	if rows == 0 {
		return 0, 0
	}

	first := int(math.Floor(b.Top/rowPx + 1e-9))
	last := int(math.Ceil((b.Top+b.Height)/rowPx - 1e-9))
	if last <= first {
		last = first + 1
	}
	switch {
	case last <= 0:
		return 0, 1
	case first >= rows:
		return rows - 1, rows
	}
	return max(first, 0), min(last, rows)
}

// BlockCols returns the half-open character range of a placement inside a
// column of the given width. Every block gets at least one character.
func BlockCols(p calendar.Placement, width int) (int, int) {
	if width <= 0 {
		return 0, 0
	}
	first := int(math.Round(p.Left / 100 * float64(width)))
	last := int(math.Round(p.Right() / 100 * float64(width)))
	first = min(max(first, 0), width-1)
	last = min(max(last, first+1), width)
	return first, last
}

// BlockText returns the lines drawn inside a block, top to bottom.
func BlockText(b calendar.Block, role calendar.Role) []string {
	it := b.Item
	head := it.Start.Format("15:04") + " " + Glyph(b) + it.Label(role)
	lines := []string{head}
	if d := it.Detail(role); d != "" {
		lines = append(lines, d)
	}
	if b.Status == calendar.StatusCanceled {
		lines = append(lines, "canceled")
	}
	return lines
}

// Glyph returns the status marker prefixed to block labels.
func Glyph(b calendar.Block) string {
	switch b.Status {
	case calendar.StatusPassed:
		return "✓ "
	case calendar.StatusCanceled:
		return "✗ "
	case calendar.StatusEvent:
		if b.Item.BlocksAppointments {
			return "■ "
		}
		return "◆ "
	}
	return ""
}

// SelectedRows returns the row range of the block with the given id in day.
func SelectedRows(s GridState, id string) (int, int, bool) {
	if s.FocusDay < 0 || s.FocusDay > 6 {
		return 0, 0, false
	}
	for _, b := range s.Days[s.FocusDay].Blocks {
		if b.Item.ID == id {
			first, last := BlockRows(b, s.Geometry, s.RowMinutes)
			return first, last, true
		}
	}
	return 0, 0, false
}

// RenderGrid draws the day header followed by the visible body rows.
func RenderGrid(s GridState) string {
	rows := GridRows(s.Geometry, s.RowMinutes)
	if s.ColWidth <= 0 || rows == 0 {
		return ""
	}

	canvases := make([]dayCanvas, 7)
	for i := range s.Days {
		canvases[i] = paintDay(s, s.Days[i], rows)
	}

	var b strings.Builder
	b.WriteString(renderHeader(s))

	end := rows
	if s.Height > 0 {
		end = min(rows, s.Scroll+s.Height)
	}
	nowRow := s.nowRow(rows)
	for row := max(s.Scroll, 0); row < end; row++ {
		b.WriteString("\n")
		b.WriteString(s.timeLabel(row, row == nowRow))
		for day := range canvases {
			b.WriteString(s.Styles.Separator.Render("│"))
			b.WriteString(canvases[day].renderRow(s, day, row))
		}
	}
	return b.String()
}

func renderHeader(s GridState) string {
	var b strings.Builder
	b.WriteString(s.Styles.Time.Render(strings.Repeat(" ", TimeColumnWidth-1)))
	for i, d := range s.Days {
		label := calendar.WeekdayShortName(i) + " " + strconv.Itoa(d.Date.Day())
		if d.Hidden > 0 {
			label += " +" + strconv.Itoa(d.Hidden)
		}
		style := s.Styles.Header
		switch {
		case i == s.FocusDay:
			style = s.Styles.HeaderFocus
		case i == s.TodayCol:
			style = s.Styles.HeaderToday
		}
		if i == s.TodayCol {
			label = "•" + label
		}
		b.WriteString(s.Styles.Separator.Render("│"))
		b.WriteString(style.Render(center(label, s.ColWidth)))
	}
	return b.String()
}

func (s GridState) timeLabel(row int, now bool) string {
	offset := s.Geometry.DayStart + time.Duration(row*s.RowMinutes)*time.Minute
	width := TimeColumnWidth - 1
	if now {
		return s.Styles.Now.Render(fit("▸"+dateutil.FormatClock(s.Now.Sub(dateutil.TruncateToDay(s.Now))), width))
	}
	if offset%time.Hour == 0 {
		return s.Styles.Time.Render(fit(" "+dateutil.FormatClock(offset), width))
	}
	return s.Styles.Time.Render(strings.Repeat(" ", width))
}

// nowRow returns the body row containing s.Now on today's column, or -1.
func (s GridState) nowRow(rows int) int {
	if s.TodayCol < 0 || s.TodayCol > 6 || s.Now.IsZero() {
		return -1
	}
	origin := dateutil.At(s.Days[s.TodayCol].Date, s.Geometry.DayStart)
	px := s.Now.Sub(origin).Hours() * s.Geometry.PixelsPerHour
	row := int(math.Floor(px / rowPixels(s.Geometry, s.RowMinutes)))
	if row < 0 || row >= rows {
		return -1
	}
	return row
}

// dayCanvas maps every cell of a day column to the block drawn there.
type dayCanvas struct {
	owner  [][]int // block index per row and column, -1 when empty
	blocks []calendar.Block
	first  []int // first row of each block
	left   []int // first column of each block
	text   [][]string
}

func paintDay(s GridState, d calendar.DayLayout, rows int) dayCanvas {
	c := dayCanvas{
		owner:  make([][]int, rows),
		blocks: d.Blocks,
		first:  make([]int, len(d.Blocks)),
		left:   make([]int, len(d.Blocks)),
		text:   make([][]string, len(d.Blocks)),
	}
	for r := range c.owner {
		c.owner[r] = make([]int, s.ColWidth)
		for col := range c.owner[r] {
			c.owner[r][col] = -1
		}
	}

	for k, b := range d.Blocks {
		r0, r1 := BlockRows(b, s.Geometry, s.RowMinutes)
		c0, c1 := BlockCols(b.Placement, s.ColWidth)
		c.first[k], c.left[k] = r0, c0

		lines := BlockText(b, s.Role)
		for i := range lines {
			lines[i] = fit(lines[i], c1-c0)
		}
		c.text[k] = lines

		for r := r0; r < r1; r++ {
			for col := c0; col < c1; col++ {
				c.owner[r][col] = k
			}
		}
	}
	return c
}

func (c dayCanvas) renderRow(s GridState, day, row int) string {
	cells := c.owner[row]
	var b strings.Builder
	for start := 0; start < len(cells); {
		k := cells[start]
		end := start + 1
		for end < len(cells) && cells[end] == k {
			end++
		}
		b.WriteString(c.renderRun(s, day, row, k, start, end))
		start = end
	}
	return b.String()
}

func (c dayCanvas) renderRun(s GridState, day, row, k, start, end int) string {
	width := end - start
	if k < 0 {
		style := s.Styles.Cell
		offset := s.Geometry.DayStart + time.Duration(row*s.RowMinutes)*time.Minute
		switch {
		case day == s.FocusDay:
			style = s.Styles.CellFocus
		case offset%time.Hour == 0:
			style = s.Styles.CellHour
		}
		return style.Render(strings.Repeat(" ", width))
	}

	blk := c.blocks[k]
	text := strings.Repeat(" ", width)
	if line := row - c.first[k]; line < len(c.text[k]) {
		text = ansi.Cut(c.text[k][line], start-c.left[k], end-c.left[k])
		text = fit(text, width)
	}
	if s.Styles.Block == nil {
		return text
	}
	return s.Styles.Block(blk, k%2 == 1, blk.Item.ID == s.Selected).Render(text)
}
