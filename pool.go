package bpnet

import (
	"fmt"
	"sync"

	fcn "github.com/gorgonia/bpnet/fcnet"
)

// gradient buffers are flat, row-major, one slice per weight layer. They are
// pooled by layout because every sub-batch task of every batch needs a set.
var (
	gradMu   sync.Mutex
	gradPool = make(map[string]*sync.Pool)
)

func makeGradients(layout fcn.Layout) [][]float64 {
	retVal := make([][]float64, layout.WeightLayers())
	for i := range retVal {
		r, c := layout.WeightShape(i)
		retVal[i] = make([]float64, r*c)
	}
	return retVal
}

func gradientPool(layout fcn.Layout) *sync.Pool {
	key := fmt.Sprint([]int(layout))
	gradMu.Lock()
	defer gradMu.Unlock()
	p, ok := gradPool[key]
	if !ok {
		l := layout.Clone()
		p = &sync.Pool{
			New: func() interface{} { return makeGradients(l) },
		}
		gradPool[key] = p
	}
	return p
}

// borrowGradients returns a zeroed gradient buffer for layout.
func borrowGradients(layout fcn.Layout) [][]float64 {
	return gradientPool(layout).Get().([][]float64)
}

// returnGradients zeroes g and puts it back.
func returnGradients(layout fcn.Layout, g [][]float64) {
	if g == nil {
		return
	}
	for _, l := range g {
		for i := range l {
			l[i] = 0
		}
	}
	gradientPool(layout).Put(g)
}
