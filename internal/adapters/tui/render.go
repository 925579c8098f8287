package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/samirrijal/pinmap/internal/core/surface"
)

type cell uint8

const (
	cellOcean cell = iota
	cellGrid
	cellLand
	cellMarker
	cellCluster // more than one pin in the cell
)

const graticuleStep = 30.0

var cellRunes = map[cell]rune{
	cellOcean:   ' ',
	cellGrid:    '·',
	cellLand:    '▒',
	cellMarker:  '●',
	cellCluster: '◉',
}

// rasterize samples the surface once per terminal cell. The rect's origin is
// the top-left cell of the map.
func rasterize(s *surface.Surface) [][]cell {
	r := s.Rect()
	w, h := int(r.Width), int(r.Height)
	if w <= 0 || h <= 0 {
		return nil
	}
	vp := s.Viewport()

	grid := make([][]cell, h)
	for row := 0; row < h; row++ {
		grid[row] = make([]cell, w)
		sy := r.Top + float64(row)
		for col := 0; col < w; col++ {
			sx := r.Left + float64(col)
			c := vp.ScreenToGeo(sx+0.5, sy+0.5, r)
			switch {
			case isLand(c.Lon, c.Lat):
				grid[row][col] = cellLand
			case crossesGraticule(vp.ScreenToGeo(sx, sy, r).Lon, vp.ScreenToGeo(sx+1, sy, r).Lon),
				crossesGraticule(vp.ScreenToGeo(sx, sy, r).Lat, vp.ScreenToGeo(sx, sy+1, r).Lat):
				grid[row][col] = cellGrid
			}
		}
	}

	for _, m := range s.Markers() {
		col := int(math.Floor(m.X - r.Left))
		row := int(math.Floor(m.Y - r.Top))
		if row < 0 || row >= h || col < 0 || col >= w {
			continue
		}
		if grid[row][col] == cellMarker || grid[row][col] == cellCluster {
			grid[row][col] = cellCluster
		} else {
			grid[row][col] = cellMarker
		}
	}
	return grid
}

// crossesGraticule reports whether a graticule line lies in [a, b).
func crossesGraticule(a, b float64) bool {
	if a > b {
		a, b = b, a
	}
	return math.Floor(a/graticuleStep) != math.Floor(b/graticuleStep) ||
		math.Mod(a, graticuleStep) == 0
}

// renderMap paints the rasterized surface, one styled run per cell kind.
func renderMap(s *surface.Surface) string {
	grid := rasterize(s)
	lines := make([]string, len(grid))
	var b strings.Builder
	for i, row := range grid {
		b.Reset()
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && row[j] == row[start] {
				continue
			}
			run := strings.Repeat(string(cellRunes[row[start]]), j-start)
			b.WriteString(cellStyles[row[start]].Render(run))
			start = j
		}
		lines[i] = b.String()
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
