package schema

import (
	"errors"

	"datagen/internal/models"
)

// MsgCycle is shown to the user when the references between tables loop.
const MsgCycle = "Foreign key relationships form a cycle. Please remove the circular dependency between tables."

var ErrCycle = errors.New("foreign key relationships form a cycle")

// graph is the foreign-key reference graph: one node per table name in schema
// order, one edge per foreign-key column pointing at another table.
type graph struct {
	nodes []string
	edges map[string][]string
}

func buildGraph(tables []models.Table) graph {
	g := graph{edges: make(map[string][]string, len(tables))}
	for _, t := range tables {
		if _, ok := g.edges[t.Name]; !ok {
			g.nodes = append(g.nodes, t.Name)
			g.edges[t.Name] = nil
		}
		for _, f := range t.Fields {
			target, _, ok := f.Reference()
			if !ok || target == t.Name {
				continue
			}
			g.edges[t.Name] = append(g.edges[t.Name], target)
		}
	}
	return g
}

type color uint8

const (
	white color = iota // unvisited
	grey               // on the active path
	black              // done
)

type frame struct {
	node string
	next int
}

// walk runs an iterative depth-first traversal from every unvisited node in
// schema order. It stops at the first back edge and returns the closed cycle;
// otherwise it returns the nodes in post-order. Targets that are not tables of
// the schema have no outgoing edges and are left out of the order.
func (g graph) walk() (order []string, cycle []string) {
	colors := make(map[string]color, len(g.nodes))

	for _, root := range g.nodes {
		if colors[root] != white {
			continue
		}
		colors[root] = grey
		stack := []frame{{node: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			successors := g.edges[top.node]

			if top.next < len(successors) {
				next := successors[top.next]
				top.next++
				switch colors[next] {
				case grey:
					return nil, closeCycle(stack, next)
				case white:
					colors[next] = grey
					stack = append(stack, frame{node: next})
				}
				continue
			}

			colors[top.node] = black
			if _, known := g.edges[top.node]; known {
				order = append(order, top.node)
			}
			stack = stack[:len(stack)-1]
		}
	}

	return order, nil
}

func closeCycle(stack []frame, start string) []string {
	i := len(stack) - 1
	for i > 0 && stack[i].node != start {
		i--
	}
	path := make([]string, 0, len(stack)-i+1)
	for _, f := range stack[i:] {
		path = append(path, f.node)
	}
	return append(path, start)
}

// HasCycle reports whether the foreign-key references between tables form a
// cycle. A table referencing itself is not a cycle.
func HasCycle(tables []models.Table) bool {
	return FindCycle(tables) != nil
}

// FindCycle returns the first cycle found as a closed path of table names,
// e.g. [orders customers orders], or nil when the graph is acyclic.
func FindCycle(tables []models.Table) []string {
	_, cycle := buildGraph(tables).walk()
	return cycle
}

// GenerationOrder lists table names so that every referenced table comes
// before the tables that reference it.
func GenerationOrder(tables []models.Table) ([]string, error) {
	order, cycle := buildGraph(tables).walk()
	if cycle != nil {
		return nil, ErrCycle
	}
	return order, nil
}
