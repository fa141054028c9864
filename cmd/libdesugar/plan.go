package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-libdesugar/descriptor"
	"github.com/albertocavalcante/go-libdesugar/emulated"
	"github.com/albertocavalcante/go-libdesugar/hierarchy"
)

func newPlanCommand(a *app) *cobra.Command {
	var (
		asJSON bool
		asDOT  bool
		asTree bool
	)
	cmd := &cobra.Command{
		Use:   "plan <spec> <classes.json> <class>...",
		Short: "Plan emulated-interface forwarding for program classes",
		Long: `Plan computes, for each named class, the companion interfaces it must
implement and the default-method forwarders it needs.

classes.json is a JSON list of class shapes:

  [{"name": "com.example.MyList", "super": "java.util.AbstractList",
    "interfaces": ["java.util.List"], "methods": ["sort(java.util.Comparator)void"]}]

With --dot the supertype graph of each class is printed instead. With
--tree the graph is printed as a tree, followed by the path from the class
to the interface supplying each forwarder.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.load(args[0])
			if err != nil {
				return err
			}
			provider, err := loadClasses(args[1])
			if err != nil {
				return err
			}
			classes := make([]descriptor.TypeName, 0, len(args)-2)
			for _, arg := range args[2:] {
				t, err := descriptor.NewTypeName(arg)
				if err != nil {
					return err
				}
				classes = append(classes, t)
			}

			out := cmd.OutOrStdout()
			if asDOT {
				for _, c := range classes {
					g, err := hierarchy.Build(c, provider)
					if err != nil {
						return err
					}
					fmt.Fprint(out, g.ToDOT())
				}
				return nil
			}

			plans, err := session.Plan(cmd.Context(), provider, classes...)
			if err != nil {
				return err
			}
			if asTree {
				for _, p := range plans {
					g, err := hierarchy.Build(p.Class, provider)
					if err != nil {
						return err
					}
					fmt.Fprint(out, g.ToText())
					writeForwarderPaths(out, g, p)
				}
				return nil
			}
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(plans)
			}
			for _, p := range plans {
				fmt.Fprint(out, p)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print plans as JSON")
	cmd.Flags().BoolVar(&asDOT, "dot", false, "print each class's supertype graph in DOT format")
	cmd.Flags().BoolVar(&asTree, "tree", false, "print each class's supertype graph as a tree")
	cmd.MarkFlagsMutuallyExclusive("json", "dot", "tree")
	return cmd
}

// writeForwarderPaths prints, for each forwarder of p, the supertype path
// from the class to the interface that supplies it.
func writeForwarderPaths(w io.Writer, g *hierarchy.Graph, p *emulated.ForwardingPlan) {
	if len(p.Forwarders) == 0 {
		return
	}
	fmt.Fprintln(w, "\nForwarders:")
	for _, f := range p.Forwarders {
		path := g.Path(g.Root, f.Interface)
		hops := make([]string, len(path))
		for i, t := range path {
			hops[i] = t.String()
		}
		fmt.Fprintf(w, "  %s: %s (depth %d)\n", f.Signature, strings.Join(hops, " -> "), g.Depth(f.Interface))
	}
}

// loadClasses reads a JSON list of class shapes.
func loadClasses(path string) (hierarchy.MapProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classes: %w", err)
	}
	var classes []hierarchy.ClassInfo
	if err := json.Unmarshal(data, &classes); err != nil {
		return nil, fmt.Errorf("decode classes %s: %w", path, err)
	}
	return hierarchy.NewMapProvider(classes...), nil
}
