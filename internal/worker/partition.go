package worker

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is returned for a worker count below one.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Partition splits items into exactly workers contiguous chunks whose
// concatenation is items.
//
// Chunk i spans [trunc(i*N/W), trunc((i+1)*N/W)), the truncated cumulative
// offsets of a real-valued average chunk size. The offsets are computed with
// integers so float drift can never add or drop a chunk. With fewer items than
// workers each leading chunk holds one item and the trailing chunks are empty.
func Partition[T any](items []T, workers int) ([][]T, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("%w: worker count must be at least 1, got %d", ErrInvalidConfiguration, workers)
	}

	n := len(items)
	chunks := make([][]T, workers)

	if n < workers {
		for i := range chunks {
			if i < n {
				chunks[i] = items[i : i+1]
			} else {
				chunks[i] = items[n:n]
			}
		}
		return chunks, nil
	}

	for i := 0; i < workers; i++ {
		lo := i * n / workers
		hi := (i + 1) * n / workers
		chunks[i] = items[lo:hi]
	}

	return chunks, nil
}
