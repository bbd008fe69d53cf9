package plot

import (
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"
)

// WritePNG rasterizes geom in style and encodes it as PNG. When head is
// visible the segment of its phase is highlighted and the marker drawn.
func WritePNG(w io.Writer, geom Geometry, head Marker, style Style) error {
	img, err := Render(geom, head, style)
	if err != nil {
		return err
	}

	return png.Encode(w, img)
}

// Render rasterizes geom into a new RGBA image.
func Render(geom Geometry, head Marker, style Style) (*image.RGBA, error) {
	if err := style.Validate(); err != nil {
		return nil, err
	}

	bounds := image.Rect(0, 0, style.Width, style.Height)
	img := image.NewRGBA(bounds)
	draw.Draw(img, bounds, image.NewUniform(style.Background), image.Point{}, draw.Src)

	if head.Visible {
		if seg, ok := geom.Segment(head.Phase); ok {
			draw.Draw(img, segmentRect(seg, style), image.NewUniform(style.Active), image.Point{}, draw.Over)
		}
	}

	r := vector.NewRasterizer(style.Width, style.Height)

	xs, ys := ToPixels(geom.Points, style)
	strokePolyline(r, xs, ys, style.LineWidth/2)
	r.Draw(img, bounds, image.NewUniform(style.Curve), image.Point{})

	if head.Visible {
		hx, hy := ToPixels([]Point{head.Point}, style)
		r.Reset(style.Width, style.Height)
		diamond(r, hx[0], hy[0], 2*style.LineWidth+1)
		r.Draw(img, bounds, image.NewUniform(style.Playhead), image.Point{})
	}

	return img, nil
}

// segmentRect returns the pixel rectangle behind a phase segment.
func segmentRect(seg Segment, style Style) image.Rectangle {
	w, _ := style.plotArea()
	x0 := style.Margin + int(math.Round(seg.Start*w))
	x1 := style.Margin + int(math.Round(seg.End*w))
	return image.Rect(x0, style.Margin, x1, style.Height-style.Margin)
}

// strokePolyline adds one quad per line segment, halfWidth pixels either
// side of the line.
func strokePolyline(r *vector.Rasterizer, xs, ys []float64, halfWidth float64) {
	for i := 1; i < len(xs); i++ {
		x0, y0, x1, y1 := xs[i-1], ys[i-1], xs[i], ys[i]

		dx, dy := x1-x0, y1-y0
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}

		nx := -dy / length * halfWidth
		ny := dx / length * halfWidth

		r.MoveTo(float32(x0+nx), float32(y0+ny))
		r.LineTo(float32(x1+nx), float32(y1+ny))
		r.LineTo(float32(x1-nx), float32(y1-ny))
		r.LineTo(float32(x0-nx), float32(y0-ny))
		r.ClosePath()
	}
}

func diamond(r *vector.Rasterizer, x, y, radius float64) {
	r.MoveTo(float32(x), float32(y-radius))
	r.LineTo(float32(x+radius), float32(y))
	r.LineTo(float32(x), float32(y+radius))
	r.LineTo(float32(x-radius), float32(y))
	r.ClosePath()
}
