package utils

import (
	"strconv"
	"strings"
)

const sizeStep = 1024

var sizeUnits = [...]string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize renders a byte count with a lower-case unit, keeping one decimal below ten units.
func FormatFileSize(byteCount int64) string {
	if byteCount < sizeStep {
		if byteCount < 0 {
			byteCount = 0
		}
		return strconv.FormatInt(byteCount, 10) + sizeUnits[0]
	}
	value := float64(byteCount)
	unitIndex := 0
	for value >= sizeStep && unitIndex < len(sizeUnits)-1 {
		value /= sizeStep
		unitIndex++
	}
	precision := 0
	if value < 10 {
		precision = 1
	}
	formatted := strings.TrimSuffix(strconv.FormatFloat(value, 'f', precision, 64), ".0")
	return formatted + sizeUnits[unitIndex]
}
