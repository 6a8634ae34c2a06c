package mcts

import (
	"fmt"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"

	"github.com/ismcts/game"
)

const dotGraphName = "search"

// DOT renders the most recent decision's tree in graphviz dot form, nodes
// labeled with action type, visits and mean reward. Returns "" when the last
// decision skipped the search (zero or one legal action).
func (e *Engine) DOT() (string, error) {
	if e.lastTree == nil {
		return "", nil
	}
	return e.lastTree.dot(e.adapter)
}

func (t *Tree) dot(codec game.Codec) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(dotGraphName); err != nil {
		return "", errors.Wrap(err, "dot graph")
	}
	if err := g.SetDir(true); err != nil {
		return "", errors.Wrap(err, "dot graph")
	}
	for i := range t.nodes {
		n := ref(i)
		nd := t.node(n)
		label := "root"
		if n != t.root {
			label = fmt.Sprintf("%s p%d", codec.ResponseType(nd.lastAction), nd.lastPlayer)
		}
		attrs := map[string]string{
			"label": fmt.Sprintf("%q", fmt.Sprintf("%s\nv=%d m=%.2f", label, nd.visits, t.mean(n))),
		}
		if err := g.AddNode(dotGraphName, nodeName(n), attrs); err != nil {
			return "", errors.Wrap(err, "dot node")
		}
	}
	for i := range t.nodes {
		n := ref(i)
		for _, kid := range t.children(n) {
			if err := g.AddEdge(nodeName(n), nodeName(kid), true, nil); err != nil {
				return "", errors.Wrap(err, "dot edge")
			}
		}
	}
	return g.String(), nil
}

func nodeName(n ref) string { return fmt.Sprintf("n%d", int(n)) }
