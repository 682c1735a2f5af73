package route

import (
	"fmt"

	"github.com/paulmach/orb"
)

type SegmentKind string

const (
	KindGroup      SegmentKind = "group"
	KindTransition SegmentKind = "transition"
)

// Segment is one colored line: a whole bucket or the connector between two.
type Segment struct {
	ID    string
	Kind  SegmentKind
	Line  orb.LineString
	Color string
}

// Plan holds every segment derived from a point list.
type Plan struct {
	Grouping    string
	Buckets     []Bucket
	Groups      []Segment
	Transitions []Segment
}

// Segments returns groups followed by transitions, the order they are drawn.
func (p Plan) Segments() []Segment {
	out := make([]Segment, 0, len(p.Groups)+len(p.Transitions))
	out = append(out, p.Groups...)
	return append(out, p.Transitions...)
}

// Build groups points with g and emits one group segment per bucket plus a
// transition from the last point of each bucket to the first point of the
// next. Transitions take the color of the bucket they arrive at.
func Build(points []Point, colors StatusColorMap, g Grouper) (Plan, error) {
	if g == nil {
		g = ByKey{}
	}
	if err := Validate(points, colors); err != nil {
		return Plan{}, err
	}
	buckets := g.Group(points)
	plan := Plan{
		Grouping: g.Name(),
		Buckets:  buckets,
		Groups:   make([]Segment, 0, len(buckets)),
	}
	for _, b := range buckets {
		line := make(orb.LineString, 0, len(b.Points))
		for _, p := range b.Points {
			line = append(line, p.Coordinates)
		}
		plan.Groups = append(plan.Groups, Segment{
			ID:    b.Key,
			Kind:  KindGroup,
			Line:  line,
			Color: colors[b.First().Status],
		})
	}
	for i := 1; i < len(buckets); i++ {
		prev := buckets[i-1].Last()
		cur := buckets[i].First()
		plan.Transitions = append(plan.Transitions, Segment{
			ID:    TransitionID(prev.Status, buckets[i].Key),
			Kind:  KindTransition,
			Line:  orb.LineString{prev.Coordinates, cur.Coordinates},
			Color: colors[cur.Status],
		})
	}
	return plan, nil
}

// TransitionID names the connector arriving at bucket key.
func TransitionID(prev Status, key string) string {
	return fmt.Sprintf("%d-%s", prev, key)
}
