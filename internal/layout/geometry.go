package layout

import (
	"fmt"
	"strings"

	"github.com/username/calendar-pager/pkg/dateutil"
)

// Insets is the padding applied to each month section.
type Insets struct {
	Top    float64 `yaml:"top"`
	Left   float64 `yaml:"left"`
	Bottom float64 `yaml:"bottom"`
	Right  float64 `yaml:"right"`
}

// Uniform returns insets with the same value on every side.
func Uniform(v float64) Insets {
	return Insets{Top: v, Left: v, Bottom: v, Right: v}
}

// Horizontal returns left + right.
func (i Insets) Horizontal() float64 { return i.Left + i.Right }

// Vertical returns top + bottom.
func (i Insets) Vertical() float64 { return i.Top + i.Bottom }

// Size is a width/height pair.
type Size struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Rect is a frame in content coordinates.
type Rect struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// MinX returns the left edge.
func (r Rect) MinX() float64 { return r.X }

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.Width }

// MinY returns the top edge.
func (r Rect) MinY() float64 { return r.Y }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.Height }

// Offset returns the rect moved by dx, dy.
func (r Rect) Offset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Intersects reports whether both rects share a non-empty area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.MaxX() && o.X < r.MaxX() && r.Y < o.MaxY() && o.Y < r.MaxY()
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", r.X, r.Y, r.Width, r.Height)
}

// Span is a closed interval along one axis. Start <= End.
type Span struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// NewSpan returns [start, end]; it panics when start > end.
func NewSpan(start, end float64) Span {
	if start > end {
		panic(fmt.Sprintf("layout: span start %g is after end %g", start, end))
	}
	return Span{Start: start, End: end}
}

// SpanOf returns the span starting at start with the given length.
func SpanOf(start, length float64) Span {
	return NewSpan(start, start+length)
}

// Length returns End - Start.
func (s Span) Length() float64 { return s.End - s.Start }

// Offset returns the span moved by v.
func (s Span) Offset(v float64) Span { return Span{Start: s.Start + v, End: s.End + v} }

// Mode is the slack distribution strategy along one axis.
type Mode int

const (
	// Packed keeps item size and spacing. Horizontally the grid is
	// centred, vertically it stays anchored to the top.
	Packed Mode = iota
	// Filled keeps spacing and insets and grows the items.
	Filled
	// Spread keeps item size and insets and grows the spacing.
	Spread
)

func (m Mode) String() string {
	switch m {
	case Filled:
		return "filled"
	case Spread:
		return "spread"
	default:
		return "packed"
	}
}

// ParseMode parses "packed", "filled" or "spread".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "packed":
		return Packed, nil
	case "filled":
		return Filled, nil
	case "spread":
		return Spread, nil
	}
	return Packed, fmt.Errorf("unknown alignment mode %q: %w", s, dateutil.ErrIllegalArgument)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Alignment pairs the horizontal and vertical modes.
type Alignment struct {
	Horizontal Mode `yaml:"horizontal"`
	Vertical   Mode `yaml:"vertical"`
}

// Params are the minimum layout guidelines. Which of them are kept as-is
// when the viewport has slack depends on Alignment.
type Params struct {
	SectionInset Insets    `yaml:"section_inset"`
	ItemSize     Size      `yaml:"item_size"`
	Spacing      Size      `yaml:"spacing"`
	Alignment    Alignment `yaml:"alignment"`
}

// MinContentSize is the smallest section that fits weeks rows with p.
func MinContentSize(p Params, weeks int) Size {
	return Size{
		Width:  p.SectionInset.Horizontal() + p.ItemSize.Width*7 + p.Spacing.Width*6,
		Height: p.SectionInset.Vertical() + p.ItemSize.Height*float64(weeks) + p.Spacing.Height*float64(weeks-1),
	}
}

// MakeFrames lays out weeks*7 cells of a single page at the origin.
func MakeFrames(p Params, weeks int, viewport Size) []Rect {
	minSize := MinContentSize(p, weeks)
	hor := horizontalSpans(p, weeks, viewport.Width-minSize.Width)
	ver := verticalSpans(p, weeks, viewport.Height-minSize.Height)

	frames := make([]Rect, len(hor))
	for i := range hor {
		frames[i] = Rect{X: hor[i].Start, Y: ver[i].Start, Width: hor[i].Length(), Height: ver[i].Length()}
	}
	return frames
}

func horizontalSpans(p Params, weeks int, slack float64) []Span {
	spans := make([]Span, 0, weeks*7)
	for w := 0; w < weeks; w++ {
		for d := 0; d < 7; d++ {
			x := p.SectionInset.Left + (p.ItemSize.Width+p.Spacing.Width)*float64(d)
			spans = append(spans, SpanOf(x, p.ItemSize.Width))
		}
	}
	if slack <= 0 {
		return spans
	}

	switch p.Alignment.Horizontal {
	case Packed:
		for i := range spans {
			spans[i] = spans[i].Offset(slack * 0.5)
		}
	case Filled:
		extra := slack / 7
		for i, s := range spans {
			spans[i] = SpanOf(s.Start+extra*float64(i%7), s.Length()+extra)
		}
	case Spread:
		extra := slack / 6
		for i := range spans {
			spans[i] = spans[i].Offset(extra * float64(i%7))
		}
	}
	return spans
}

func verticalSpans(p Params, weeks int, slack float64) []Span {
	spans := make([]Span, 0, weeks*7)
	for w := 0; w < weeks; w++ {
		y := p.SectionInset.Top + (p.ItemSize.Height+p.Spacing.Height)*float64(w)
		for d := 0; d < 7; d++ {
			spans = append(spans, SpanOf(y, p.ItemSize.Height))
		}
	}
	if slack <= 0 {
		return spans
	}

	switch p.Alignment.Vertical {
	case Packed:
	case Filled:
		extra := slack / float64(weeks)
		for i, s := range spans {
			spans[i] = SpanOf(s.Start+extra*float64(i/7), s.Length()+extra)
		}
	case Spread:
		if weeks > 1 {
			extra := slack / float64(weeks-1)
			for i := range spans {
				spans[i] = spans[i].Offset(extra * float64(i/7))
			}
		}
	}
	return spans
}
