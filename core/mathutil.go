package core

import "math"

func asin(v float32) float64 {
	return math.Asin(float64(v))
}

func atan2(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
