// Package algos provides the addressors that decide which channel slot each payload bit goes to.
package algos

// Error types

// EmptyPoolError is returned when an addressor is called but its pool of available addresses is empty.
type EmptyPoolError struct{}

func (e *EmptyPoolError) Error() string {
	return "The pool of bit addresses is empty."
}

// Addressor hands out one slot address per call, in the order bits should be written or read.
type Addressor func() (int64, error)

// Algorithm closures

// SequentialAddressor works sequentially, from 0 to slots - 1.
// Slot n is channel n%3 of pixel n/3, so bits run R,G,B,R,G,B,... across the grid.
func SequentialAddressor(slots int64) Addressor {
	pos := int64(-1)
	return func() (int64, error) {
		pos++
		if pos >= slots {
			return -1, &EmptyPoolError{}
		}
		return pos, nil
	}
}
