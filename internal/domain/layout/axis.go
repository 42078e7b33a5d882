package layout

import "math"

// AxisTicks returns round years between start and end for an axis with about
// target ticks. Steps are 1, 2 or 5 times a power of ten.
func AxisTicks(start, end float64, target int) []int {
	if target < 1 || !(end > start) || math.IsInf(end-start, 0) {
		return nil
	}
	step := niceStep((end - start) / float64(target))
	first := math.Ceil(start/step) * step
	ticks := make([]int, 0, target+2)
	for y := first; y <= end; y += step {
		ticks = append(ticks, int(math.Round(y)))
	}
	return ticks
}

func niceStep(raw float64) float64 {
	if raw < 1 {
		return 1
	}
	pow := math.Pow(10, math.Floor(math.Log10(raw)))
	switch f := raw / pow; {
	case f <= 1:
		return pow
	case f <= 2:
		return 2 * pow
	case f <= 5:
		return 5 * pow
	default:
		return 10 * pow
	}
}
