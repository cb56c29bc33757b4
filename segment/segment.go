// Package segment implements the recurring time-window model: a Segment denotes the union of a
// sorted, non-overlapping set of Ranges repeated every Period starting at Start.
package segment

import (
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	. "github.com/stevegt/goadapt"
)

// Range is a half-open time interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the range.
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Segment is a recurring set of allowed time windows. Ranges must be sorted by Start, must not
// overlap, and must each lie wholly within [Start, Start+Period). Period must be strictly
// positive. A Segment with Ranges == [[Start, Start+Period)] is anytime; with no Ranges it is
// never.
type Segment struct {
	Start  time.Time
	Period time.Duration
	Ranges []Range
}

// New validates and returns a Segment. It panics (via goadapt.Assert, recovered by callers that
// defer Return) if the invariants in spec.md §3 don't hold.
func New(start time.Time, period time.Duration, ranges []Range) Segment {
	Assert(period > 0, "segment period must be strictly positive, got %v", period)
	for i, r := range ranges {
		Assert(r.End.After(r.Start), "range %d has non-positive duration: %v..%v", i, r.Start, r.End)
		Assert(!r.Start.Before(start) && !r.End.After(start.Add(period)),
			"range %d %v..%v does not lie within one period of %v", i, r.Start, r.End, start)
		if i > 0 {
			Assert(!ranges[i-1].End.After(r.Start), "ranges must be sorted and non-overlapping")
		}
	}
	return Segment{Start: start, Period: period, Ranges: append([]Range(nil), ranges...)}
}

// Named is the store-facing shape of a segment: the bare recurring-window Segment plus the
// human-facing attributes a store persists alongside it. The scheduling core only ever touches
// the embedded Segment.
type Named struct {
	ID uint32
	Segment
	Name string
	Hue  uint32
}

// NewNamed describes a time segment submitted to a store, before it has been assigned an id.
type NewNamed struct {
	Segment
	Name string
	Hue  uint32
}

// Anytime returns a segment that covers all time, anchored at start with the given period.
func Anytime(start time.Time, period time.Duration) Segment {
	return Segment{Start: start, Period: period, Ranges: []Range{{Start: start, End: start.Add(period)}}}
}

// Never returns a segment that covers no time.
func Never(start time.Time, period time.Duration) Segment {
	return Segment{Start: start, Period: period, Ranges: nil}
}

// Inverse returns a segment with the same Start and Period whose Ranges are exactly the
// complement of seg.Ranges within [Start, Start+Period). The inverse of anytime is never and
// vice versa.
func (seg Segment) Inverse() Segment {
	periodEnd := seg.Start.Add(seg.Period)
	if len(seg.Ranges) == 0 {
		return Segment{Start: seg.Start, Period: seg.Period, Ranges: []Range{{Start: seg.Start, End: periodEnd}}}
	}

	var out []Range
	if seg.Ranges[0].Start.After(seg.Start) {
		out = append(out, Range{Start: seg.Start, End: seg.Ranges[0].Start})
	}
	for i := 0; i < len(seg.Ranges)-1; i++ {
		if seg.Ranges[i+1].Start.After(seg.Ranges[i].End) {
			out = append(out, Range{Start: seg.Ranges[i].End, End: seg.Ranges[i+1].Start})
		}
	}
	last := seg.Ranges[len(seg.Ranges)-1]
	if periodEnd.After(last.End) {
		out = append(out, Range{Start: last.End, End: periodEnd})
	}
	return Segment{Start: seg.Start, Period: seg.Period, Ranges: out}
}

// WithStart returns a semantically equivalent segment (the same recurring cover) anchored at
// newStart. Every range is shifted by -k*Period for the unique integer k that puts its shifted
// start in [newStart, newStart+Period), splitting any range that would straddle the boundary.
func (seg Segment) WithStart(newStart time.Time) Segment {
	periodNs := seg.Period.Nanoseconds()
	shift := func(t time.Time) time.Time {
		diffNs := t.Sub(newStart).Nanoseconds()
		quotient := diffNs / periodNs
		if diffNs%periodNs < 0 {
			quotient--
		}
		return t.Add(-time.Duration(quotient * periodNs))
	}

	type shifted struct {
		start time.Time
		dur   time.Duration
	}
	var shiftedRanges []shifted
	for _, r := range seg.Ranges {
		shiftedRanges = append(shiftedRanges, shifted{start: shift(r.Start), dur: r.Duration()})
	}
	sort.Slice(shiftedRanges, func(i, j int) bool { return shiftedRanges[i].start.Before(shiftedRanges[j].start) })

	periodEnd := newStart.Add(seg.Period)
	var out []Range
	for _, s := range shiftedRanges {
		end := s.start.Add(s.dur)
		if !end.After(periodEnd) {
			out = append(out, Range{Start: s.start, End: end})
		} else {
			out = append(out,
				Range{Start: s.start, End: periodEnd},
				Range{Start: newStart, End: end.Add(-seg.Period)},
			)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return Segment{Start: newStart, Period: seg.Period, Ranges: out}
}

// GenerateRanges returns every range fully or partially inside [a, b) that the segment covers.
// Ranges ending after b are truncated to end at b; adjacent emitted ranges that meet are
// coalesced. If a >= b, it returns nil.
//
// Period boundaries between a and b are produced by a SECONDLY rrule anchored at a with Interval
// set to the segment's period in seconds, rather than a hand-rolled loop.
func (seg Segment) GenerateRanges(a, b time.Time) []Range {
	if !a.Before(b) {
		return nil
	}

	aligned := seg.WithStart(a)
	periodSeconds := int(seg.Period / time.Second)
	if periodSeconds < 1 {
		periodSeconds = 1
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.SECONDLY,
		Interval: periodSeconds,
		Dtstart:  a,
	})
	Ck(err)
	periodStarts := rule.Between(a, b, true)
	if len(periodStarts) == 0 || periodStarts[0].After(a) {
		periodStarts = append([]time.Time{a}, periodStarts...)
	}

	var out []Range
	for _, periodStart := range periodStarts {
		if !periodStart.Before(b) {
			break
		}
		offset := periodStart.Sub(a)
		for _, r := range aligned.Ranges {
			start := r.Start.Add(offset)
			end := r.End.Add(offset)
			if !start.Before(b) {
				continue
			}
			if end.After(b) {
				end = b
			}
			if !end.After(start) {
				continue
			}
			if n := len(out); n > 0 && out[n-1].End.Equal(start) {
				out[n-1].End = end
				continue
			}
			out = append(out, Range{Start: start, End: end})
		}
	}
	return out
}
