package route

import "fmt"

// GroupKey derives the bucket key of a status. Anything outside 1..3
// falls into "status4".
func GroupKey(s Status) string {
	switch s {
	case 1:
		return "status1"
	case 2:
		return "status2"
	case 3:
		return "status3"
	default:
		return "status4"
	}
}

// Bucket is an ordered group of points sharing a key.
type Bucket struct {
	Key    string
	Points []Point
}

func (b Bucket) First() Point { return b.Points[0] }
func (b Bucket) Last() Point  { return b.Points[len(b.Points)-1] }

// Grouper partitions points into buckets. Every point lands in exactly one
// bucket and keeps its relative order within it.
type Grouper interface {
	Name() string
	Group(points []Point) []Bucket
}

const (
	GroupingByKey      = "key"
	GroupingContiguous = "contiguous"
)

// ByKey buckets by GroupKey across the whole list, in first-occurrence
// order. Interleaved statuses (1,2,1) merge into one bucket per key, so a
// bucket's line may jump across points of other buckets.
type ByKey struct{}

func (ByKey) Name() string { return GroupingByKey }

func (ByKey) Group(points []Point) []Bucket {
	var buckets []Bucket
	index := make(map[string]int)
	for _, p := range points {
		k := GroupKey(p.Status)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, Bucket{Key: k})
		}
		buckets[i].Points = append(buckets[i].Points, p)
	}
	return buckets
}

// Contiguous starts a new bucket on every key change. A key seen again
// gets a "#n" suffix so bucket keys stay unique.
type Contiguous struct{}

func (Contiguous) Name() string { return GroupingContiguous }

func (Contiguous) Group(points []Point) []Bucket {
	var buckets []Bucket
	seen := make(map[string]int)
	prev := ""
	for _, p := range points {
		k := GroupKey(p.Status)
		if len(buckets) == 0 || k != prev {
			seen[k]++
			key := k
			if n := seen[k]; n > 1 {
				key = fmt.Sprintf("%s#%d", k, n)
			}
			buckets = append(buckets, Bucket{Key: key})
			prev = k
		}
		buckets[len(buckets)-1].Points = append(buckets[len(buckets)-1].Points, p)
	}
	return buckets
}

// GrouperByName resolves a strategy name; "" selects ByKey.
func GrouperByName(name string) (Grouper, error) {
	switch name {
	case "", GroupingByKey:
		return ByKey{}, nil
	case GroupingContiguous:
		return Contiguous{}, nil
	}
	return nil, fmt.Errorf("unknown grouping strategy %q", name)
}
