package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lachiem1/paycycle/internal/dateutil"
	"github.com/lachiem1/paycycle/internal/finance"
	"github.com/lachiem1/paycycle/internal/money"
)

const (
	burndownCellEmpty = iota
	burndownCellAxis
	burndownCellLine
	burndownCellToday
	burndownCellNode
)

// renderBurndownLines draws the projected balance from today down to the pay
// date as a small character chart.
func renderBurndownLines(points []finance.ProjectionPoint, contentWidth int, formatter *money.Formatter) []string {
	titleStyle := lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(colorMuted)
	lineStyle := lipgloss.NewStyle().Foreground(colorCoral)
	todayStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	nodeStyle := lipgloss.NewStyle().Foreground(colorYellow).Bold(true)

	out := []string{titleStyle.Render("projected balance until pay day")}
	if len(points) == 0 {
		return append(out, labelStyle.Render("no projection"))
	}
	top := points[0].ProjectedBalance
	if top <= 0 {
		return append(out, labelStyle.Render("nothing left to spend this cycle"))
	}

	innerWidth := max(16, contentWidth-2)
	plotHeight := 7
	if contentWidth >= 72 {
		plotHeight = 9
	}

	yTickCount := 3
	yTickByRow := make(map[int]float64, yTickCount)
	for i := 0; i < yTickCount; i++ {
		row := int(math.Round(float64(i) * float64(plotHeight-2) / float64(yTickCount-1)))
		ratio := float64((plotHeight-1)-row) / float64(plotHeight-1)
		yTickByRow[row] = ratio * top
	}
	yTickByRow[plotHeight-1] = 0
	yLabelWidth := 1
	for _, v := range yTickByRow {
		yLabelWidth = max(yLabelWidth, lipgloss.Width(formatter.Format(v)))
	}

	dataCols := max(10, innerWidth-yLabelWidth-2)
	graphWidth := dataCols + 1
	xAxisRow := plotHeight - 1

	grid := make([][]rune, plotHeight)
	codes := make([][]int, plotHeight)
	for i := range grid {
		grid[i] = make([]rune, graphWidth)
		codes[i] = make([]int, graphWidth)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
		setBurndownCell(grid, codes, 0, i, '|', burndownCellAxis)
	}
	for x := 0; x < graphWidth; x++ {
		setBurndownCell(grid, codes, x, xAxisRow, '—', burndownCellAxis)
	}
	setBurndownCell(grid, codes, 0, xAxisRow, '└', burndownCellAxis)

	// Today is always the first point.
	for y := 0; y < xAxisRow; y++ {
		setBurndownCell(grid, codes, 1, y, '·', burndownCellToday)
	}

	prevX, prevY := -1, -1
	for i, p := range points {
		x := burndownColumn(i, len(points), dataCols) + 1
		y := burndownRow(p.ProjectedBalance, top, xAxisRow)
		if prevX >= 0 {
			drawBurndownSegment(grid, codes, prevX, prevY, x, y, '.', burndownCellLine)
		}
		// One node per day only while days stay visually apart.
		if len(points) <= dataCols/2 {
			setBurndownCell(grid, codes, x, y, '●', burndownCellNode)
		}
		prevX, prevY = x, y
	}

	for row := 0; row < plotHeight; row++ {
		axisLabel := ""
		if v, ok := yTickByRow[row]; ok {
			axisLabel = formatter.Format(v)
		}
		prefix := fmt.Sprintf("%*s ", yLabelWidth, axisLabel)
		var b strings.Builder
		for i, ch := range grid[row] {
			cell := string(ch)
			switch codes[row][i] {
			case burndownCellAxis:
				b.WriteString(labelStyle.Render(cell))
			case burndownCellLine:
				b.WriteString(lineStyle.Render(cell))
			case burndownCellToday:
				b.WriteString(todayStyle.Render(cell))
			case burndownCellNode:
				b.WriteString(nodeStyle.Render(cell))
			default:
				b.WriteString(cell)
			}
		}
		out = append(out, labelStyle.Render(prefix)+b.String())
	}

	axisPrefix := strings.Repeat(" ", yLabelWidth+1)
	first := formatBurndownDate(points[0].Date)
	last := formatBurndownDate(points[len(points)-1].Date)
	gap := max(1, graphWidth-lipgloss.Width(first)-lipgloss.Width(last))
	out = append(out, labelStyle.Render(axisPrefix+first+strings.Repeat(" ", gap)+last))
	return out
}

func burndownColumn(index, count, dataCols int) int {
	if count <= 1 {
		return 0
	}
	return int(math.Round(float64(index) * float64(dataCols-1) / float64(count-1)))
}

func burndownRow(value, top float64, xAxisRow int) int {
	ratio := value / top
	ratio = math.Max(0, math.Min(1, ratio))
	y := xAxisRow - int(math.Round(ratio*float64(xAxisRow)))
	// Zero sits just above the axis so the line stays visible.
	if y == xAxisRow && xAxisRow > 0 {
		y = xAxisRow - 1
	}
	return y
}

func formatBurndownDate(raw string) string {
	t, ok := dateutil.ParseDateOnly(raw)
	if !ok {
		return raw
	}
	return t.Format("02 Jan")
}

func setBurndownCell(grid [][]rune, codes [][]int, x int, y int, ch rune, code int) {
	if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
		return
	}
	if code >= codes[y][x] {
		grid[y][x] = ch
		codes[y][x] = code
	}
}

func drawBurndownSegment(grid [][]rune, codes [][]int, x0, y0, x1, y1 int, ch rune, code int) {
	dx := x1 - x0
	dy := y1 - y0
	steps := max(absInt(dx), absInt(dy))
	if steps <= 0 {
		setBurndownCell(grid, codes, x0, y0, ch, code)
		return
	}
	for step := 0; step <= steps; step++ {
		x := x0 + int(math.Round(float64(step*dx)/float64(steps)))
		y := y0 + int(math.Round(float64(step*dy)/float64(steps)))
		if x <= 0 {
			continue
		}
		setBurndownCell(grid, codes, x, y, ch, code)
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
