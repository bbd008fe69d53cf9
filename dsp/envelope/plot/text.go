package plot

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/cwbudde/algo-envelope/dsp/core"
	"github.com/cwbudde/algo-envelope/dsp/envelope"
)

const (
	curveCell    = '*'
	playheadCell = 'o'
	axisCell     = '-'
)

// WriteText draws geom as an ASCII plot of cols by rows cells, followed by
// an axis line marking where each phase starts. A visible marker is drawn
// as 'o'.
func WriteText(w io.Writer, geom Geometry, head Marker, cols, rows int) error {
	if cols < 2 || rows < 2 {
		return fmt.Errorf("%w: text plot needs at least 2x2 cells: %dx%d", ErrInvalidStyle, cols, rows)
	}

	grid := make([][]byte, rows)
	for r := range grid {
		grid[r] = bytes.Repeat([]byte{' '}, cols)
	}

	for c := 0; c < cols; c++ {
		x := float64(c) / float64(cols-1)
		grid[cellRow(geom.ValueAt(x), rows)][c] = curveCell
	}

	if head.Visible {
		grid[cellRow(head.Y, rows)][cellCol(head.X, cols)] = playheadCell
	}

	axis := bytes.Repeat([]byte{axisCell}, cols)
	for _, s := range geom.Segments {
		axis[cellCol(s.Start, cols)] = phaseLetter(s.Phase)
	}

	bw := bufio.NewWriter(w)
	for _, row := range grid {
		bw.Write(bytes.TrimRight(row, " "))
		bw.WriteByte('\n')
	}
	bw.Write(axis)
	bw.WriteByte('\n')

	return bw.Flush()
}

func cellRow(y float64, rows int) int {
	return int(math.Round((1 - core.Clamp(y, 0, 1)) * float64(rows-1)))
}

func cellCol(x float64, cols int) int {
	return int(math.Round(core.Clamp(x, 0, 1) * float64(cols-1)))
}

func phaseLetter(p envelope.Phase) byte {
	return strings.ToUpper(p.String())[0]
}
