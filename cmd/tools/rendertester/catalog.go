package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/manga-thumb/backend/internal/model/catalog"
)

func newCatalogCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Validate a catalog file and list its options",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("file") {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				file = cfg.Render.CatalogFile
			}

			options, err := catalog.LoadFile(file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, kind := range []catalog.Kind{catalog.KindTemplate, catalog.KindColor, catalog.KindFont} {
				items := options.Options(kind)
				pairs := make([]string, 0, len(items))
				for _, item := range items {
					pairs = append(pairs, item.Label+"="+item.Value)
				}
				fmt.Fprintf(out, "%s: %s\n", kind, strings.Join(pairs, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "catalog TOML file (CATALOG_FILE); empty lists the built-in options")

	return cmd
}
