package memory

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestEstimator_EstimateRunSize(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		maxRuns   int
		available int64
		want      int64
	}{
		{
			name:      "half of available memory wins",
			total:     1000,
			maxRuns:   1024,
			available: 100,
			want:      50,
		},
		{
			name:      "rounds up the naive size",
			total:     1025,
			maxRuns:   1024,
			available: 0,
			want:      2,
		},
		{
			name:      "exact division",
			total:     4096,
			maxRuns:   1024,
			available: 2,
			want:      4,
		},
		{
			name:      "naive size larger than half of memory",
			total:     10 << 30,
			maxRuns:   1024,
			available: 4 << 20,
			want:      10 << 20,
		},
		{
			name:      "zero max runs treated as one",
			total:     77,
			maxRuns:   0,
			available: 10,
			want:      77,
		},
		{
			name:      "empty input",
			total:     0,
			maxRuns:   1024,
			available: 0,
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Estimator{}
			assert.Equal(t, tt.want, e.EstimateRunSize(tt.total, tt.maxRuns, tt.available))
		})
	}
}

func TestEstimator_EstimateLineFootprint(t *testing.T) {
	e := NewEstimator()
	var s string
	overhead := int64(unsafe.Sizeof(s)) + int64(unsafe.Sizeof(uintptr(0)))

	assert.Equal(t, overhead, e.ObjectOverhead)
	assert.Equal(t, overhead, e.EstimateLineFootprint(""))
	assert.Equal(t, overhead+5, e.EstimateLineFootprint("hello"))

	assert.Equal(t, int64(3), Estimator{}.EstimateLineFootprint("abc"))
}

func TestAvailable(t *testing.T) {
	assert.Positive(t, Available())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, DefaultAvailable, clamp(0))
	assert.Equal(t, DefaultAvailable, clamp(-5))
	assert.Equal(t, int64(42), clamp(42))
}
