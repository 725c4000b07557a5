package codegen

import (
	"sort"
	"strings"

	"github.com/teranos/mmgen/errors"
	"github.com/teranos/mmgen/model"
)

// findCycles returns the strongly connected components of the supertype
// graph that contain more than one class. Members of each component are
// sorted by name; components are ordered by their first member.
func findCycles(g *ClassGraph) [][]*model.Class {
	// Tarjan's algorithm over generated classes in name order.
	index := make(map[*model.Class]int)
	lowlink := make(map[*model.Class]int)
	onStack := make(map[*model.Class]bool)
	var stack []*model.Class
	var cycles [][]*model.Class
	next := 0

	var strongConnect func(v *model.Class)
	strongConnect = func(v *model.Class) {
		index[v] = next
		lowlink[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.supertypes[v] {
			if !g.IsGenerated(w) {
				continue
			}
			if _, visited := index[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], index[w])
			}
		}

		if lowlink[v] != index[v] {
			return
		}
		var component []*model.Class
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			component = append(component, w)
			if w == v {
				break
			}
		}
		if len(component) > 1 {
			sortClasses(component)
			cycles = append(cycles, component)
		}
	}

	for _, cls := range g.Generated {
		if _, visited := index[cls]; !visited {
			strongConnect(cls)
		}
	}

	sort.SliceStable(cycles, func(i, j int) bool {
		return cycles[i][0].Name < cycles[j][0].Name
	})
	return cycles
}

// checkAcyclic fails with ErrCycle when any generalization cycle exists.
func checkAcyclic(g *ClassGraph) error {
	cycles := findCycles(g)
	if len(cycles) == 0 {
		return nil
	}
	groups := make([]string, 0, len(cycles))
	for _, c := range cycles {
		groups = append(groups, strings.Join(classNames(c), ", "))
	}
	return errors.WithHint(
		errors.Wrapf(errors.ErrCycle, "classes [%s]", strings.Join(groups, "], [")),
		"remove one generalization from each cycle")
}

func classNames(classes []*model.Class) []string {
	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = c.Name
	}
	return names
}
