package runtime

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerCount(t *testing.T) {
	prev := runtime.GOMAXPROCS(0)
	t.Cleanup(func() { runtime.GOMAXPROCS(prev) })

	assert.Equal(t, 3, WorkerCount(3))
	assert.Equal(t, 64, WorkerCount(64))

	runtime.GOMAXPROCS(1)
	assert.Equal(t, 1, WorkerCount(0))

	runtime.GOMAXPROCS(4)
	assert.Equal(t, 3, WorkerCount(0))

	runtime.GOMAXPROCS(64)
	assert.Equal(t, maxWorkers, WorkerCount(-1))
}
