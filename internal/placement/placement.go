// Package placement decides where a dragged card or category lands,
// given the pointer position and the on-screen rectangles of the other
// items. Coordinates are client pixels as reported by the webview.
package placement

import (
	"math"
	"sort"
)

// End is the sentinel id meaning "insert after every element"
const End = ""

// Rect is an element's bounding box
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CenterX returns the horizontal center
func (r Rect) CenterX() float64 { return r.Left + r.Width/2 }

// CenterY returns the vertical center
func (r Rect) CenterY() float64 { return r.Top + r.Height/2 }

// Element is one rendered item
type Element struct {
	ID       string `json:"id"`
	Rect     Rect   `json:"rect"`
	Dragging bool   `json:"dragging"`
}

// Point is a pointer position
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func eligible(elems []Element) []Element {
	out := make([]Element, 0, len(elems))
	for _, e := range elems {
		if !e.Dragging {
			out = append(out, e)
		}
	}
	return out
}

// ResolveGrid returns the id of the card the dragged card should be
// inserted before in a wrapped grid. ok is false when it belongs at the
// end.
//
// Cards are put in reading order first: two cards share a row when their
// tops differ by no more than half the height of the first card. The
// pointer is then compared against the midpoint between each card and the
// next one, horizontally within a row and vertically across a row break.
// This is a greedy single pass, so a pointer sitting right on a row
// boundary can land one slot off.
func ResolveGrid(elems []Element, p Point) (id string, ok bool) {
	cards := eligible(elems)
	if len(cards) == 0 {
		return End, false
	}

	rowTolerance := cards[0].Rect.Height / 2
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i].Rect, cards[j].Rect
		if math.Abs(a.Top-b.Top) > rowTolerance {
			return a.Top < b.Top
		}
		return a.Left < b.Left
	})

	for i := 0; i < len(cards)-1; i++ {
		cur, next := cards[i].Rect, cards[i+1].Rect

		if math.Abs(cur.Top-next.Top) < cur.Height/2 {
			midX := (cur.CenterX() + next.CenterX()) / 2
			if p.X < midX {
				return cards[i].ID, true
			}
			continue
		}

		midY := (cur.CenterY() + next.CenterY()) / 2
		if p.Y < midY {
			return cards[i].ID, true
		}
	}

	last := cards[len(cards)-1]
	r := last.Rect
	cy, cx := r.CenterY(), r.CenterX()
	sameRow := math.Abs(p.Y-cy) <= r.Height/2

	switch {
	case sameRow && p.X > cx:
		return End, false
	case p.Y < cy || (sameRow && p.X < cx):
		return last.ID, true
	}
	return End, false
}

// ResolveList returns the element whose vertical center is the nearest
// one below y. ok is false when y is below every element, meaning append.
func ResolveList(elems []Element, y float64) (id string, ok bool) {
	closest := math.Inf(-1)
	for _, e := range elems {
		if e.Dragging {
			continue
		}
		offset := y - e.Rect.CenterY()
		if offset < 0 && offset > closest {
			closest = offset
			id, ok = e.ID, true
		}
	}
	return id, ok
}
