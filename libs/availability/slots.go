package availability

import (
	"sort"
)

// Booking is an existing consultation occupying part of the working day.
type Booking struct {
	Start    TimeOfDay
	Duration int // minutes
}

func (b Booking) End() TimeOfDay {
	return b.Start.Add(b.Duration)
}

// Window is the part of the day during which slots may be offered.
type Window struct {
	Begin TimeOfDay
	End   TimeOfDay
}

func (w Window) String() string {
	return w.Begin.String() + "-" + w.End.String()
}

// Slot is a half-open free interval [Start, End).
type Slot struct {
	Start TimeOfDay
	End   TimeOfDay
}

func (s Slot) Minutes() int {
	return s.End.Sub(s.Start)
}

// String formats the slot as "HH:mm-HH:mm".
func (s Slot) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// FormatSlots renders slots in order using Slot.String.
func FormatSlots(slots []Slot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.String())
	}
	return out
}

// AvailablePeriods is the parallel-array form of Calculate: startTimes[i] and
// durations[i] (minutes) describe one booking. A nil slice is rejected with
// ErrNullInput; an empty one means no bookings.
func AvailablePeriods(startTimes []TimeOfDay, durations []int, beginWorkingTime, endWorkingTime TimeOfDay, consultationTime int, opts ...Option) ([]string, error) {
	if startTimes == nil {
		return nil, newError(ErrNullInput, "startTimes", "must not be nil")
	}
	if durations == nil {
		return nil, newError(ErrNullInput, "durations", "must not be nil")
	}
	if len(startTimes) != len(durations) {
		return nil, newError(ErrArrayMismatch, "durations", "startTimes and durations must have equal length")
	}

	bookings := make([]Booking, len(startTimes))
	for i := range startTimes {
		bookings[i] = Booking{Start: startTimes[i], Duration: durations[i]}
	}

	slots, err := Calculate(bookings, Window{Begin: beginWorkingTime, End: endWorkingTime}, consultationTime, opts...)
	if err != nil {
		return nil, err
	}
	return FormatSlots(slots), nil
}

// Calculate returns the free slots of slotLength minutes inside window that do not
// overlap any booking, in chronological order. Bookings may be given in any order.
func Calculate(bookings []Booking, window Window, slotLength int, opts ...Option) ([]Slot, error) {
	if slotLength <= 0 {
		return nil, newError(ErrInvalidArgument, "consultationTime", "consultationTime must be positive")
	}
	o := buildOptions(opts)
	gaps, err := freeGaps(bookings, window, o)
	if err != nil {
		return nil, err
	}

	var slots []Slot
	for _, gap := range gaps {
		slots = appendSlots(slots, gap, slotLength, o.remainder)
	}
	return slots, nil
}

// FreeGaps returns the maximal free intervals of window, before slicing into slots.
func FreeGaps(bookings []Booking, window Window, opts ...Option) ([]Slot, error) {
	return freeGaps(bookings, window, buildOptions(opts))
}

func freeGaps(bookings []Booking, window Window, o options) ([]Slot, error) {
	if err := validateWindow(window); err != nil {
		return nil, err
	}
	for i, b := range bookings {
		if err := validateBooking(i, b, window); err != nil {
			return nil, err
		}
	}

	order := sortedOrder(bookings)
	var gaps []Slot
	cursor := window.Begin
	for _, i := range order {
		b := bookings[i]
		if b.Start < cursor && o.overlaps == RejectOverlaps {
			return nil, newBookingError(ErrInvalidArgument, i, "consultations overlap")
		}
		if b.Start > cursor {
			gaps = append(gaps, Slot{Start: cursor, End: b.Start})
		}
		if end := b.End(); end > cursor {
			cursor = end
		}
	}
	if cursor < window.End {
		gaps = append(gaps, Slot{Start: cursor, End: window.End})
	}
	return gaps, nil
}

func validateWindow(w Window) error {
	if !w.Begin.Valid() || !w.End.Valid() {
		return newError(ErrOutOfRange, "workingWindow", "working window outside 00:00-24:00")
	}
	if w.Begin >= w.End {
		return newError(ErrOutOfRange, "workingWindow", "working window reversed")
	}
	return nil
}

func validateBooking(i int, b Booking, w Window) error {
	if b.Duration <= 0 {
		return newBookingError(ErrInvalidArgument, i, "duration must be positive")
	}
	// Compare against the minutes left in the window; Start+Duration can overflow.
	if b.Start < w.Begin || b.Start > w.End || b.Duration > w.End.Sub(b.Start) {
		return newBookingError(ErrOutOfRange, i, "consultation outside working hours")
	}
	return nil
}

// sortedOrder returns booking indexes ordered by start time; equal starts keep
// their input order.
func sortedOrder(bookings []Booking) []int {
	order := make([]int, len(bookings))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return bookings[order[a]].Start < bookings[order[b]].Start
	})
	return order
}

func appendSlots(slots []Slot, gap Slot, slotLength int, remainder RemainderPolicy) []Slot {
	if gap.Minutes() < slotLength {
		return slots
	}
	start := gap.Start
	for start.Add(slotLength) <= gap.End {
		slots = append(slots, Slot{Start: start, End: start.Add(slotLength)})
		start = start.Add(slotLength)
	}
	if start < gap.End && remainder == KeepRemainder {
		slots = append(slots, Slot{Start: start, End: gap.End})
	}
	return slots
}
