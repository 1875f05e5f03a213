package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/hujh08/galfit/internal/record"
)

// Definition describes one registered profile: its canonical name, the
// compiled schema of its component block, and the flags that drive
// rendering and fitting-region handling.
type Definition struct {
	Name          string
	Schema        *record.Schema
	Sky           bool
	NeedPixelSize bool
}

// transformFunc converts a model into a fresh model of another profile.
// Implementations never mutate the source.
type transformFunc func(ctx context.Context, m *Model, opts transformOptions) (*Model, error)

var (
	defs     = map[string]*Definition{}
	defOrder []string

	edges     = map[string]map[string]transformFunc{}
	edgeOrder = map[string][]string{}
)

// register adds a profile definition. It panics on a duplicate name so a
// bad wiring fails at startup, not at first use.
func register(def *Definition) {
	name := strings.ToLower(def.Name)
	if _, dup := defs[name]; dup {
		panic(fmt.Sprintf("profile: duplicate definition for %q", name))
	}
	defs[name] = def
	defOrder = append(defOrder, name)
}

// registerTransform adds a direct conversion edge between two registered
// profiles. Edge insertion order is preserved: when several chains have
// equal length, path search prefers the earliest registered edges.
func registerTransform(from, to string, fn transformFunc) {
	from, to = strings.ToLower(from), strings.ToLower(to)
	if _, ok := defs[from]; !ok {
		panic(fmt.Sprintf("profile: transform source %q not registered", from))
	}
	if _, ok := defs[to]; !ok {
		panic(fmt.Sprintf("profile: transform target %q not registered", to))
	}
	if _, dup := edges[from][to]; dup {
		panic(fmt.Sprintf("profile: duplicate transform %s to %s", from, to))
	}
	if edges[from] == nil {
		edges[from] = map[string]transformFunc{}
	}
	edges[from][to] = fn
	edgeOrder[from] = append(edgeOrder[from], to)
}

// Lookup returns the definition registered under name. Matching is
// case-insensitive.
func Lookup(name string) (*Definition, bool) {
	def, ok := defs[strings.ToLower(name)]
	return def, ok
}

// Names lists the registered profile names in registration order.
func Names() []string {
	out := make([]string, len(defOrder))
	copy(out, defOrder)
	return out
}

// pathTo searches the transform graph breadth-first and returns the
// shortest chain of edges from one profile to another. Among chains of
// equal length the one using earlier-registered edges wins.
func pathTo(from, to string) ([]transformFunc, bool) {
	type node struct {
		name  string
		chain []transformFunc
	}
	visited := map[string]bool{from: true}
	queue := []node{{name: from}}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, next := range edgeOrder[n.name] {
			if visited[next] {
				continue
			}
			chain := make([]transformFunc, 0, len(n.chain)+1)
			chain = append(chain, n.chain...)
			chain = append(chain, edges[n.name][next])
			if next == to {
				return chain, true
			}
			visited[next] = true
			queue = append(queue, node{name: next, chain: chain})
		}
	}
	return nil, false
}
