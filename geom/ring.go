// Package geom assembles unordered way segments into chains and converts
// paths and areas into geometries.
package geom

import (
	"github.com/pkg/errors"

	"github.com/omniscale/tubemap/element"
)

var (
	ErrNoPaths   = errors.New("polygon requires at least one path")
	ErrEmptyPath = errors.New("path without coordinates")
)

// chain is a sequence of oriented paths where the last coordinate of each
// path equals the first coordinate of the next one.
type chain struct {
	paths []element.Path
}

func (c *chain) head() element.MapCoords { return c.paths[0].First() }
func (c *chain) tail() element.MapCoords { return c.paths[len(c.paths)-1].Last() }

func (c *chain) appendPath(p element.Path) {
	if p.First() != c.tail() {
		p = p.Reversed()
	}
	c.paths = append(c.paths, p)
}

func (c *chain) prependPath(p element.Path) {
	if p.Last() != c.head() {
		p = p.Reversed()
	}
	c.paths = append([]element.Path{p}, c.paths...)
}

func (c *chain) concat() element.Path {
	n := 0
	for _, p := range c.paths {
		n += len(p)
	}
	result := make(element.Path, 0, n)
	for _, p := range c.paths {
		result = append(result, p...)
	}
	return result
}

type assembler struct {
	paths []element.Path
	byEnd map[element.MapCoords][]int
	seen  []bool
}

func newAssembler(paths []element.Path) *assembler {
	a := &assembler{
		paths: paths,
		byEnd: make(map[element.MapCoords][]int, len(paths)*2),
		seen:  make([]bool, len(paths)),
	}
	for i, p := range paths {
		a.byEnd[p.First()] = append(a.byEnd[p.First()], i)
		if p.Last() != p.First() {
			a.byEnd[p.Last()] = append(a.byEnd[p.Last()], i)
		}
	}
	return a
}

// next returns the first unseen path that ends at link and that is not
// the path with index from. Returns -1 for self-loops and dead ends.
func (a *assembler) next(link element.MapCoords, from int) int {
	for _, candidate := range a.byEnd[link] {
		if candidate != from && !a.seen[candidate] {
			return candidate
		}
	}
	return -1
}

func (a *assembler) firstUnseen() int {
	for i := range a.seen {
		if !a.seen[i] {
			return i
		}
	}
	return -1
}

// grow builds the maximal chain that contains the path with index seed.
// The chain is extended at its tail first and at its head once the tail
// reaches a dead end.
func (a *assembler) grow(seed int) *chain {
	a.seen[seed] = true
	c := &chain{paths: []element.Path{a.paths[seed]}}

	last := seed
	for {
		n := a.next(c.tail(), last)
		if n < 0 {
			break
		}
		a.seen[n] = true
		c.appendPath(a.paths[n])
		last = n
	}

	first := seed
	for {
		n := a.next(c.head(), first)
		if n < 0 {
			break
		}
		a.seen[n] = true
		c.prependPath(a.paths[n])
		first = n
	}
	return c
}

// Assemble joins paths that share end coordinates into maximal chains.
//
// Every input path ends up in exactly one chain. Paths are only reordered
// and reversed; no coordinates are added, removed or deduplicated, so a
// shared end node appears once for each path that contains it.
func Assemble(paths []element.Path) ([]element.Path, error) {
	if len(paths) == 0 {
		return nil, ErrNoPaths
	}
	for i, p := range paths {
		if len(p) == 0 {
			return nil, errors.Wrapf(ErrEmptyPath, "path #%d", i)
		}
	}

	a := newAssembler(paths)
	var result []element.Path
	for seed := 0; seed >= 0; seed = a.firstUnseen() {
		result = append(result, a.grow(seed).concat())
	}
	return result, nil
}
