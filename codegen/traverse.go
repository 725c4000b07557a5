package codegen

import "github.com/teranos/mmgen/model"

// FindRootNodes returns the generated classes that have no supertypes but
// are the supertype of some other class, in graph order.
func FindRootNodes(g *ClassGraph) []*model.Class {
	var roots []*model.Class
	for _, cls := range g.Generated {
		if len(g.supertypes[cls]) == 0 && g.referenced[cls] {
			roots = append(roots, cls)
		}
	}
	return roots
}

// BreadthFirstSearch returns root followed by every generated class that
// directly or transitively lists it as a supertype, in FIFO discovery order.
// A class is explored at most once.
func BreadthFirstSearch(g *ClassGraph, root *model.Class) []*model.Class {
	var explored []*model.Class
	seen := map[*model.Class]bool{root: true}
	queue := []*model.Class{root}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		explored = append(explored, node)

		for _, cls := range g.Generated {
			if seen[cls] || !containsClass(g.supertypes[cls], node) {
				continue
			}
			seen[cls] = true
			queue = append(queue, cls)
		}
	}
	return explored
}

func containsClass(classes []*model.Class, c *model.Class) bool {
	for _, x := range classes {
		if x == c {
			return true
		}
	}
	return false
}
