package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-libdesugar/catalog"
)

func newCatalogCommand(a *app) *cobra.Command {
	var (
		outPath string
		level   int
	)
	cmd := &cobra.Command{
		Use:   "catalog <spec> <surface.json>",
		Short: "List the library surface the specification makes available",
		Long: `Catalog prints, one per line and sorted, every type and method the
specification makes available below its native API level.

surface.json maps each library type to its public methods:

  {"java.util.Collection": [{"method": "removeIf(java.util.function.Predicate)boolean", "added_in": 24}]}`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.load(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			surface, err := catalog.LoadSurface(f)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("level") {
				level = session.MinAPILevel()
			}
			c, err := session.CatalogAt(cmd.Context(), surface, level)
			if err != nil {
				return err
			}
			a.logger.Debug("catalog built", "level", level, "entries", c.Len())

			var buf bytes.Buffer
			if _, err := c.WriteTo(&buf); err != nil {
				return fmt.Errorf("render catalog: %w", err)
			}
			return writeOutput(cmd, outPath, buf.Bytes())
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&level, "level", 0, "API level to build the catalog for (default --min-api)")
	return cmd
}
