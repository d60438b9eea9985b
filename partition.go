package bpnet

// span is the half open index range [start, end).
type span struct{ start, end int }

func (s span) len() int { return s.end - s.start }

// partition splits [0, n) into parts contiguous spans of n/parts elements.
// The last span also takes the remaining n%parts elements, so when n < parts
// every span but the last is empty.
func partition(n, parts int) []span {
	if parts < 1 {
		parts = 1
	}
	size := n / parts
	retVal := make([]span, parts)
	for i := range retVal {
		retVal[i] = span{start: i * size, end: (i + 1) * size}
	}
	retVal[parts-1].end = n
	return retVal
}
