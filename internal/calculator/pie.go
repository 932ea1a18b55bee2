package calculator

import (
	"fmt"
	"math"
	"strconv"

	"github.com/Dan9191/trust-score-service/internal/models"
)

// DefaultPie matches the 200x200 viewBox used by the report view
var DefaultPie = PieGeometry{Size: 200, Radius: 80}

// PieGeometry is the canvas the slices are drawn on; the centre is Size/2
type PieGeometry struct {
	Size   float64 `json:"size"`
	Radius float64 `json:"radius"`
}

// Point is an SVG coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PieSlice is one category's wedge
type PieSlice struct {
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Percentage float64 `json:"percentage"`
	StartAngle float64 `json:"startAngle"` // degrees from 12 o'clock
	EndAngle   float64 `json:"endAngle"`
	Start      Point   `json:"start"`
	End        Point   `json:"end"`
	LargeArc   bool    `json:"largeArc"`
	Path       string  `json:"path"`
}

// PieSlices lays categories out on the default geometry
func PieSlices(categories []models.SpendingCategory) []PieSlice {
	return PieSlicesWith(categories, DefaultPie)
}

// PieSlicesWith walks categories in input order, accumulating percentages into
// angles (1% = 3.6 degrees) starting at 12 o'clock.
func PieSlicesWith(categories []models.SpendingCategory, g PieGeometry) []PieSlice {
	cx, cy := g.Size/2, g.Size/2
	slices := make([]PieSlice, 0, len(categories))

	var cumulative float64
	for _, c := range categories {
		startDeg := cumulative * 3.6
		cumulative += c.Percentage
		endDeg := cumulative * 3.6

		start := arcPoint(cx, cy, g.Radius, startDeg)
		end := arcPoint(cx, cy, g.Radius, endDeg)
		large := c.Percentage > 50

		slices = append(slices, PieSlice{
			Name:       c.Name,
			Color:      c.Color,
			Percentage: c.Percentage,
			StartAngle: startDeg,
			EndAngle:   endDeg,
			Start:      start,
			End:        end,
			LargeArc:   large,
			Path:       slicePath(cx, cy, g.Radius, start, end, large),
		})
	}
	return slices
}

func arcPoint(cx, cy, r, deg float64) Point {
	rad := deg*math.Pi/180 - math.Pi/2
	return Point{X: cx + r*math.Cos(rad), Y: cy + r*math.Sin(rad)}
}

func slicePath(cx, cy, r float64, start, end Point, large bool) string {
	flag := 0
	if large {
		flag = 1
	}
	return fmt.Sprintf("M %s %s L %s %s A %s %s 0 %d 1 %s %s Z",
		num(cx), num(cy), num(start.X), num(start.Y), num(r), num(r), flag, num(end.X), num(end.Y))
}

// num trims float noise such as 99.99999999999999 out of path data
func num(v float64) string {
	v = math.Round(v*1e4) / 1e4
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
