package bpnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionCoverage(t *testing.T) {
	for n := 0; n <= 37; n++ {
		for parts := 1; parts <= 9; parts++ {
			spans := partition(n, parts)
			if !assert.Len(t, spans, parts) {
				continue
			}
			next := 0
			for i, s := range spans {
				// contiguous and disjoint
				assert.Equal(t, next, s.start, "n=%d parts=%d span %d", n, parts, i)
				assert.True(t, s.end >= s.start)
				next = s.end
				if i < parts-1 {
					assert.Equal(t, n/parts, s.len())
				}
			}
			assert.Equal(t, n, next, "union must be [0, %d)", n)
			assert.Equal(t, n/parts+n%parts, spans[parts-1].len(), "last span takes the remainder")
		}
	}
}

func TestPartitionFewerItemsThanParts(t *testing.T) {
	spans := partition(3, 4)
	assert.Equal(t, []span{{0, 0}, {0, 0}, {0, 0}, {0, 3}}, spans)
}
