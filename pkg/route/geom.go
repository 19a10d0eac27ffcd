package route

import (
	"math"
	"strconv"
	"strings"
)

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) add(q Point) Point       { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) sub(q Point) Point       { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) scale(k float64) Point   { return Point{p.X * k, p.Y * k} }
func (p Point) dist(q Point) float64    { return math.Hypot(p.X-q.X, p.Y-q.Y) }
func (p Point) unitTo(q Point) Point    { return q.sub(p).scale(1 / p.dist(q)) }
func cross(o, a, b Point) float64       { return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X) }
func between(v, lo, hi float64) bool    { return v >= min(lo, hi) && v <= max(lo, hi) }
func (p Point) eq(q Point) bool         { return p.X == q.X && p.Y == q.Y }
func (p Point) fmt(sb *strings.Builder) { sb.WriteString(num(p.X) + " " + num(p.Y)) }

// Rect is an axis-aligned box given by its top-left corner and size, the
// same convention cards use.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the centre of r.
func (r Rect) Center() Point { return Point{r.X + r.Width/2, r.Y + r.Height/2} }

// Expand grows r by d on every side.
func (r Rect) Expand(d float64) Rect {
	return Rect{r.X - d, r.Y - d, r.Width + 2*d, r.Height + 2*d}
}

// Contains reports whether p lies inside r or on its border.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Overlaps reports whether the interiors of r and o intersect.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width && r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// IntersectsSegment reports whether the segment a-b touches r.
func (r Rect) IntersectsSegment(a, b Point) bool {
	if r.Contains(a) || r.Contains(b) {
		return true
	}
	corners := [4]Point{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X + r.Width, r.Y + r.Height},
		{r.X, r.Y + r.Height},
	}
	for i := range corners {
		if segmentsIntersect(a, b, corners[i], corners[(i+1)%4]) {
			return true
		}
	}
	return false
}

func segmentsIntersect(p1, p2, q1, q2 Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	onSegment := func(a, b, p Point) bool { return between(p.X, a.X, b.X) && between(p.Y, a.Y, b.Y) }
	switch {
	case d1 == 0 && onSegment(q1, q2, p1):
		return true
	case d2 == 0 && onSegment(q1, q2, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, q1):
		return true
	case d4 == 0 && onSegment(p1, p2, q2):
		return true
	}
	return false
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Simplify removes consecutive duplicates and interior points lying on the
// line through their neighbours.
func Simplify(points []Point) []Point {
	var dedup []Point
	for _, p := range points {
		if len(dedup) == 0 || !dedup[len(dedup)-1].eq(p) {
			dedup = append(dedup, p)
		}
	}
	if len(dedup) < 3 {
		return dedup
	}

	out := []Point{dedup[0]}
	for i := 1; i < len(dedup)-1; i++ {
		prev, cur, next := out[len(out)-1], dedup[i], dedup[i+1]
		if math.Abs(cross(prev, cur, next)) < 1e-9 {
			continue
		}
		out = append(out, cur)
	}
	return append(out, dedup[len(dedup)-1])
}

// Smooth returns an SVG path through points with every interior corner
// rounded by a quadratic curve. The radius at each corner is capped at half
// the shorter adjacent segment.
func Smooth(points []Point, radius float64) string {
	if len(points) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("M ")
	points[0].fmt(&sb)
	for i := 1; i < len(points)-1; i++ {
		prev, cur, next := points[i-1], points[i], points[i+1]
		r := min(radius, prev.dist(cur)/2, cur.dist(next)/2)
		if r <= 0 {
			sb.WriteString(" L ")
			cur.fmt(&sb)
			continue
		}
		in := cur.add(cur.unitTo(prev).scale(r))
		out := cur.add(cur.unitTo(next).scale(r))
		sb.WriteString(" L ")
		in.fmt(&sb)
		sb.WriteString(" Q ")
		cur.fmt(&sb)
		sb.WriteString(" ")
		out.fmt(&sb)
	}
	if len(points) > 1 {
		sb.WriteString(" L ")
		points[len(points)-1].fmt(&sb)
	}
	return sb.String()
}
