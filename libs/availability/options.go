package availability

import "fmt"

// OverlapPolicy decides what happens when two bookings share time.
type OverlapPolicy int

const (
	// MergeOverlaps treats overlapping bookings as one continuous busy period.
	MergeOverlaps OverlapPolicy = iota
	// RejectOverlaps fails with ErrInvalidArgument.
	RejectOverlaps
)

func (p OverlapPolicy) String() string {
	switch p {
	case MergeOverlaps:
		return "merge"
	case RejectOverlaps:
		return "reject"
	default:
		return fmt.Sprintf("OverlapPolicy(%d)", int(p))
	}
}

// ParseOverlapPolicy accepts "merge" or "reject".
func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch s {
	case "merge", "":
		return MergeOverlaps, nil
	case "reject":
		return RejectOverlaps, nil
	default:
		return 0, fmt.Errorf("unknown overlap policy %q", s)
	}
}

// RemainderPolicy decides what happens to the tail of a free gap that is shorter
// than one slot. Gaps shorter than a whole slot never produce anything.
type RemainderPolicy int

const (
	// KeepRemainder emits the tail as a final, shorter slot.
	KeepRemainder RemainderPolicy = iota
	// DropRemainder discards the tail so every slot has the requested length.
	DropRemainder
)

func (p RemainderPolicy) String() string {
	switch p {
	case KeepRemainder:
		return "keep"
	case DropRemainder:
		return "drop"
	default:
		return fmt.Sprintf("RemainderPolicy(%d)", int(p))
	}
}

// ParseRemainderPolicy accepts "keep" or "drop".
func ParseRemainderPolicy(s string) (RemainderPolicy, error) {
	switch s {
	case "keep", "":
		return KeepRemainder, nil
	case "drop":
		return DropRemainder, nil
	default:
		return 0, fmt.Errorf("unknown remainder policy %q", s)
	}
}

type options struct {
	overlaps  OverlapPolicy
	remainder RemainderPolicy
}

// Option configures Calculate, FreeGaps and AvailablePeriods.
type Option func(*options)

// WithOverlapPolicy sets how overlapping bookings are handled. Default MergeOverlaps.
func WithOverlapPolicy(p OverlapPolicy) Option {
	return func(o *options) { o.overlaps = p }
}

// WithRemainderPolicy sets what happens to a short gap tail. Default KeepRemainder.
func WithRemainderPolicy(p RemainderPolicy) Option {
	return func(o *options) { o.remainder = p }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
