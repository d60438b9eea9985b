package fcn

import (
	"fmt"
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
)

const graphName = "network"

func nodeName(layer, node int) string { return fmt.Sprintf("L%dN%d", layer, node) }

// ToDot renders the network as a Graphviz digraph. Each layer is a cluster,
// each weight an edge labelled with its value.
func (n *Network) ToDot() (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return "", errors.WithStack(err)
	}
	if err := g.SetDir(true); err != nil {
		return "", errors.WithStack(err)
	}
	if err := g.AddAttr(graphName, "rankdir", "LR"); err != nil {
		return "", errors.WithStack(err)
	}

	for l, width := range n.layout {
		cluster := fmt.Sprintf("cluster_%d", l)
		if err := g.AddSubGraph(graphName, cluster, map[string]string{
			"label": strconv.Quote(fmt.Sprintf("layer %d", l)),
		}); err != nil {
			return "", errors.WithStack(err)
		}
		for i := 0; i < width; i++ {
			if err := g.AddNode(cluster, nodeName(l, i), map[string]string{"shape": "circle"}); err != nil {
				return "", errors.WithStack(err)
			}
		}
	}

	for l, w := range n.weights {
		rows, cols := w.Dims()
		for to := 0; to < rows; to++ {
			for from := 0; from < cols; from++ {
				v, err := w.At(to, from)
				if err != nil {
					return "", err
				}
				attrs := map[string]string{"label": strconv.Quote(strconv.FormatFloat(v, 'f', 3, 64))}
				if err := g.AddEdge(nodeName(l, from), nodeName(l+1, to), true, attrs); err != nil {
					return "", errors.WithStack(err)
				}
			}
		}
	}
	return g.String(), nil
}
