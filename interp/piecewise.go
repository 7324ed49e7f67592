package interp

import (
	"github.com/google/btree"
	"github.com/uyouii/coretemps/common"
	"github.com/uyouii/coretemps/model"
)

const btreeDegree = 16

type segmentItem struct {
	model.Segment
}

func (i segmentItem) Less(than btree.Item) bool {
	return i.XLo < than.(segmentItem).XLo
}

// Piecewise is the interpolant of a whole series, segments are looked up by timestamp.
// It is read only after construction, so concurrent lookups are safe.
type Piecewise struct {
	tree   *btree.BTree
	covers model.Range
}

func NewPiecewise(segments []model.Segment) (*Piecewise, error) {
	if len(segments) == 0 {
		return nil, common.ErrorInsufficientSamples
	}

	tree := btree.New(btreeDegree)
	for i, segment := range segments {
		if i > 0 && segment.XLo != segments[i-1].XHi {
			return nil, common.ErrorNonMonotonicInput
		}
		tree.ReplaceOrInsert(segmentItem{segment})
	}

	return &Piecewise{
		tree: tree,
		covers: model.Range{
			Lo: segments[0].XLo,
			Hi: segments[len(segments)-1].XHi,
		},
	}, nil
}

// Build interpolates the series and indexes the resulting segments.
func Build(series *model.Series) (*Piecewise, error) {
	segments, err := Interpolate(series)
	if err != nil {
		return nil, err
	}
	return NewPiecewise(segments)
}

// Range returns the covered range [Lo, Hi], closed at Hi.
func (p *Piecewise) Range() model.Range {
	return p.covers
}

func (p *Piecewise) Len() int {
	return p.tree.Len()
}

// At returns the segment covering x. The last segment also covers its upper bound.
func (p *Piecewise) At(x float64) (model.Segment, bool) {
	if !p.covers.Contains(x) {
		return model.Segment{}, false
	}

	var found model.Segment
	ok := false
	p.tree.DescendLessOrEqual(segmentItem{model.Segment{XLo: x}}, func(i btree.Item) bool {
		found = i.(segmentItem).Segment
		ok = found.Contains(x) || x == p.covers.Hi
		return false
	})
	return found, ok
}

func (p *Piecewise) Eval(x float64) (float64, bool) {
	segment, ok := p.At(x)
	if !ok {
		return 0, false
	}
	return segment.Eval(x), true
}

// Ascend calls fn for each segment in ascending order until fn returns false.
func (p *Piecewise) Ascend(fn func(segment model.Segment) bool) {
	p.tree.Ascend(func(i btree.Item) bool {
		return fn(i.(segmentItem).Segment)
	})
}

// Segments returns the segments in ascending order.
func (p *Piecewise) Segments() []model.Segment {
	segments := make([]model.Segment, 0, p.Len())
	p.Ascend(func(segment model.Segment) bool {
		segments = append(segments, segment)
		return true
	})
	return segments
}
