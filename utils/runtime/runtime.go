package runtime

import "runtime"

// maxWorkers caps the default worker count.
const maxWorkers = 16

// WorkerCount returns the number of workers for parallel store reads. A
// positive request is honored as is; otherwise GOMAXPROCS less one core is
// used, clamped to [1, maxWorkers].
func WorkerCount(requested int) int {
	if requested > 0 {
		return requested
	}

	cores := runtime.GOMAXPROCS(0)
	if cores <= 1 {
		return 1
	}

	return min(cores-1, maxWorkers)
}
