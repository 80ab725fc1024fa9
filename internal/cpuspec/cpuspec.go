// Package cpuspec inspects the host CPU and recommends a worker thread
// count based on its performance cores; the offline renderer logs both at
// debug level.
package cpuspec

import (
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/klauspost/cpuid/v2"
)

// CPUSpec contains information about CPU specifications
type CPUSpec struct {
	BrandName        string
	PerformanceCores int
}

// GetCPUSpec returns CPU specifications including the number of performance cores
func GetCPUSpec() CPUSpec {
	brandName := cpuid.CPU.BrandName
	return CPUSpec{
		BrandName:        brandName,
		PerformanceCores: determinePerformanceCores(brandName),
	}
}

// GetOptimalThreadCount returns the recommended number of worker threads
// for offline rendering.
func (c CPUSpec) GetOptimalThreadCount() int {
	availableCPUs := runtime.NumCPU()

	// For hybrid architectures we primarily want the performance cores.
	if c.PerformanceCores > 0 {
		if c.PerformanceCores > availableCPUs {
			return availableCPUs
		}
		return c.PerformanceCores
	}

	// Fallback to all logical cores if P-cores can't be determined.
	if cores := cpuid.CPU.LogicalCores; cores > 0 {
		return cores
	}
	return availableCPUs
}

var intelHybridPattern = regexp.MustCompile(`i[3579]-1[2-9]\d{3}`)

// determinePerformanceCores recognizes the hybrid Intel 12th+ generation
// desktop parts; everything else reports zero and falls back to logical
// cores.
func determinePerformanceCores(brandName string) int {
	brand := strings.ToLower(brandName)
	if !strings.Contains(brand, "intel") {
		return 0
	}
	if m := intelHybridPattern.FindString(brand); m != "" {
		// Parse the SKU digits after the generation prefix; the P-core
		// count tracks the model tier closely enough for thread sizing.
		dash := strings.IndexByte(m, '-')
		sku := m[dash+1:]
		if gen, err := strconv.Atoi(sku[:2]); err == nil && gen >= 12 {
			switch {
			case strings.HasPrefix(m, "i9"):
				return 8
			case strings.HasPrefix(m, "i7"):
				return 8
			case strings.HasPrefix(m, "i5"):
				return 6
			case strings.HasPrefix(m, "i3"):
				return 4
			}
		}
	}
	return 0
}
