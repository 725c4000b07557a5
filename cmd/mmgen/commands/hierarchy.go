package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/mmgen/codegen"
	"github.com/teranos/mmgen/model"
)

var (
	hierarchyFormat string
	hierarchyJSON   bool
)

// HierarchyCmd represents the hierarchy command
var HierarchyCmd = &cobra.Command{
	Use:   "hierarchy SOURCE",
	Short: "Show generalization hierarchies of generated classes",
	Long: `Show every root of the generated class graph and the classes that
derive from it.

A root is a generated class without supertypes that at least one other class
specializes or extends. Subclasses are listed breadth first; a class with
several supertypes appears once, under the first one reached.

Examples:
  mmgen hierarchy uml.yaml
  mmgen hierarchy uml.gaphor --json`,
	Args: cobra.ExactArgs(1),
	RunE: runHierarchy,
}

func init() {
	HierarchyCmd.Flags().StringVarP(&hierarchyFormat, "format", "f", "", "Model format: yaml, json, toml, gaphor, sqlite (default: from extension)")
	HierarchyCmd.Flags().BoolVarP(&hierarchyJSON, "json", "j", false, "Output hierarchies as JSON")
}

// hierarchyEntry is one root and its breadth-first exploration
type hierarchyEntry struct {
	Root  string   `json:"root"`
	Order []string `json:"order"`
}

func runHierarchy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	loader, err := newLoader(cfg, hierarchyFormat)
	if err != nil {
		return err
	}

	store, err := loader.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	defer store.Shutdown()

	graph, err := gen.Graph(cmd.Context(), store)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	roots := codegen.FindRootNodes(graph)

	if hierarchyJSON {
		entries := make([]hierarchyEntry, 0, len(roots))
		for _, root := range roots {
			entries = append(entries, hierarchyEntry{
				Root:  root.Name,
				Order: names(codegen.BreadthFirstSearch(graph, root)),
			})
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if len(roots) == 0 {
		fmt.Fprintln(out, "No generalization hierarchies")
		return nil
	}
	for _, root := range roots {
		tree := pterm.NewTreeFromLeveledList(leveledHierarchy(graph, root))
		rendered, err := pterm.DefaultTree.WithRoot(tree).Srender()
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
	}
	return nil
}

// leveledHierarchy lays out the breadth-first exploration of root as a
// leveled list: each class sits one level below the closest supertype that
// was explored before it.
func leveledHierarchy(graph *codegen.ClassGraph, root *model.Class) pterm.LeveledList {
	explored := codegen.BreadthFirstSearch(graph, root)
	depth := map[*model.Class]int{root: 0}
	children := make(map[*model.Class][]*model.Class)

	for _, cls := range explored[1:] {
		var parent *model.Class
		for _, sup := range graph.Supertypes(cls) {
			d, ok := depth[sup]
			if !ok {
				continue
			}
			if parent == nil || d < depth[parent] {
				parent = sup
			}
		}
		depth[cls] = depth[parent] + 1
		children[parent] = append(children[parent], cls)
	}

	var list pterm.LeveledList
	var walk func(cls *model.Class)
	walk = func(cls *model.Class) {
		list = append(list, pterm.LeveledListItem{Level: depth[cls], Text: label(graph, cls)})
		for _, child := range children[cls] {
			walk(child)
		}
	}
	walk(root)
	return list
}

func label(graph *codegen.ClassGraph, cls *model.Class) string {
	sups := graph.Supertypes(cls)
	if len(sups) <= 1 {
		return cls.Name
	}
	return fmt.Sprintf("%s(%s)", cls.Name, strings.Join(names(sups), ", "))
}

func names(classes []*model.Class) []string {
	out := make([]string, len(classes))
	for i, c := range classes {
		out[i] = c.Name
	}
	return out
}
