// internal/utils/sequence.go
package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Human readable document numbers: REQ-YYYYMM-NNN / PO-YYYYMM-NNN.
// The counter restarts every year-month bucket.

func SequencePrefix(kind string, t time.Time) string {
	return fmt.Sprintf("%s-%s-", kind, t.Format("200601"))
}

func FormatSequence(kind string, t time.Time, n int) string {
	return fmt.Sprintf("%s%03d", SequencePrefix(kind, t), n)
}

// ParseSequence extracts the trailing counter from a document number.
// Returns 0 when the number does not match the expected shape.
func ParseSequence(number string) int {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0
	}
	n, err := strconv.Atoi(number[idx+1:])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// NextSequence computes the successor of the latest allocated number in
// the current bucket. Allocation is read-latest-then-increment; under
// concurrent writers the same number can be handed out twice (see the
// unique index on the column, which turns that into an insert error).
func NextSequence(kind string, t time.Time, latest string) string {
	n := 1
	if strings.HasPrefix(latest, SequencePrefix(kind, t)) {
		n = ParseSequence(latest) + 1
	}
	return FormatSequence(kind, t, n)
}
