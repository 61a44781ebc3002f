package utils

import "math"

func StringPtr(s string) *string {
	return &s
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func PtrFloat64(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func PtrInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

// RoundFloat64 rounds half away from zero to the given decimal places.
func RoundFloat64(f float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(f*factor) / factor
}
