package cpuspec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterminePerformanceCores(t *testing.T) {
	cases := []struct {
		brand string
		want  int
	}{
		{"12th Gen Intel(R) Core(TM) i9-12900K", 8},
		{"12th Gen Intel(R) Core(TM) i7-12700", 8},
		{"13th Gen Intel(R) Core(TM) i5-13600K", 6},
		{"12th Gen Intel(R) Core(TM) i3-12100", 4},
		{"Intel(R) Core(TM) i7-9700K CPU @ 3.60GHz", 0},
		{"AMD Ryzen 9 5950X 16-Core Processor", 0},
		{"Apple M2 Pro", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, determinePerformanceCores(tc.brand), tc.brand)
	}
}

func TestGetOptimalThreadCountPositive(t *testing.T) {
	spec := GetCPUSpec()
	assert.Positive(t, spec.GetOptimalThreadCount())
}
