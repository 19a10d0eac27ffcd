package route

import (
	"math"
	"strings"
)

// Side is a side of a card.
type Side string

const (
	SideTop    Side = "top"
	SideRight  Side = "right"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
)

// normal returns the outward unit vector of the side.
func (s Side) normal() Point {
	switch s {
	case SideTop:
		return Point{0, -1}
	case SideRight:
		return Point{1, 0}
	case SideBottom:
		return Point{0, 1}
	default:
		return Point{-1, 0}
	}
}

// AnchorPair is where a connection leaves its source card and enters its
// target card.
type AnchorPair struct {
	Source     Point `json:"source"`
	Target     Point `json:"target"`
	SourceSide Side  `json:"sourceSide"`
	TargetSide Side  `json:"targetSide"`
}

// Anchors picks the facing sides of two cards. When the horizontal
// centre-to-centre distance exceeds the vertical one the cards face each
// other left/right, otherwise top/bottom; ties go to top/bottom. Anchors are
// the midpoints of the chosen sides.
func Anchors(a, b Rect) AnchorPair {
	ca, cb := a.Center(), b.Center()
	dx, dy := cb.X-ca.X, cb.Y-ca.Y

	var p AnchorPair
	switch {
	case math.Abs(dx) > math.Abs(dy) && dx > 0:
		p.SourceSide, p.TargetSide = SideRight, SideLeft
	case math.Abs(dx) > math.Abs(dy):
		p.SourceSide, p.TargetSide = SideLeft, SideRight
	case dy >= 0:
		p.SourceSide, p.TargetSide = SideBottom, SideTop
	default:
		p.SourceSide, p.TargetSide = SideTop, SideBottom
	}
	p.Source = sidePoint(a, p.SourceSide)
	p.Target = sidePoint(b, p.TargetSide)
	return p
}

func sidePoint(r Rect, s Side) Point {
	c := r.Center()
	switch s {
	case SideTop:
		return Point{c.X, r.Y}
	case SideRight:
		return Point{r.X + r.Width, c.Y}
	case SideBottom:
		return Point{c.X, r.Y + r.Height}
	default:
		return Point{r.X, c.Y}
	}
}

// BezierPath returns an SVG cubic curve between the anchors. Control points
// extend along each side's outward normal by half the larger axis distance,
// at least 20 units.
func BezierPath(p AnchorPair) string {
	k := max(math.Abs(p.Target.X-p.Source.X), math.Abs(p.Target.Y-p.Source.Y))/2
	k = max(k, 20)
	c1 := p.Source.add(p.SourceSide.normal().scale(k))
	c2 := p.Target.add(p.TargetSide.normal().scale(k))

	var sb strings.Builder
	sb.WriteString("M ")
	p.Source.fmt(&sb)
	sb.WriteString(" C ")
	c1.fmt(&sb)
	sb.WriteString(", ")
	c2.fmt(&sb)
	sb.WriteString(", ")
	p.Target.fmt(&sb)
	return sb.String()
}
