// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/olegiv/navmenu/internal/menu"
	"github.com/olegiv/navmenu/internal/render"
	"github.com/olegiv/navmenu/internal/service"
	"github.com/olegiv/navmenu/internal/transfer"
)

// migrateCommand creates the "migrate" command.
func (c *CLI) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db, c.logger)

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "database %s is up to date\n", c.cfg.DBDriver)
			return nil
		},
	}
}

// renderCommand creates the "render" command.
func (c *CLI) renderCommand() *cobra.Command {
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "render <menu> [path]",
		Short: "Print a menu as drawn for the given page path",
		Long: `Print a menu as drawn for the given page path (default "/").
Active items are marked with "*" in the text outline.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 2 {
				path = args[1]
			}

			db, err := c.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db, c.logger)

			svc := service.NewMenuService(db, nil, nil, c.logger)
			drawn, err := svc.Draw(cmd.Context(), args[0], path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !asHTML {
				return render.Text(out, drawn.Items)
			}

			renderer, err := render.New()
			if err != nil {
				return err
			}
			return renderer.Menu(out, drawn.Name, drawn.Items)
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "print the menu markup instead of a text outline")
	return cmd
}

// importCommand creates the "import" command.
func (c *CLI) importCommand() *cobra.Command {
	var (
		strategy string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import menus from a YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conflict, err := transfer.ParseConflictStrategy(strategy)
			if err != nil {
				return err
			}

			db, err := c.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db, c.logger)

			var invalidator transfer.Invalidator
			backend, menuCache, err := c.openCache(cmd.Context(), true)
			if err != nil {
				return fmt.Errorf("initializing cache: %w", err)
			}
			if backend != nil {
				defer func() { _ = backend.Close() }()
				invalidator = menuCache
			}

			importer := transfer.NewImporter(db, invalidator, c.logger)
			opts := transfer.DefaultImportOptions()
			opts.DryRun = dryRun
			opts.ConflictStrategy = conflict
			result, err := importer.ImportFromFile(cmd.Context(), args[0], opts)
			if result != nil {
				printImportResult(cmd.OutOrStdout(), result)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", string(transfer.DefaultImportOptions().ConflictStrategy), "what to do with existing menus: skip or overwrite")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and count without writing")
	return cmd
}

func printImportResult(w io.Writer, r *transfer.ImportResult) {
	prefix := ""
	if r.DryRun {
		prefix = "dry run: "
	}
	_, _ = fmt.Fprintf(w, "%smenus created=%d updated=%d skipped=%d, nodes created=%d\n",
		prefix, r.Created["menus"], r.Updated["menus"], r.Skipped["menus"], r.Created["nodes"])
	for _, e := range r.Errors {
		_, _ = fmt.Fprintf(w, "  error: %s\n", e.Error())
	}
}

// exportCommand creates the "export" command.
func (c *CLI) exportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [menu...]",
		Short: "Export menus as a YAML document (all menus when none are named)",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db, c.logger)

			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			return transfer.NewExporter(db, c.logger).ExportTo(cmd.Context(), out, args...)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

// auditCommand creates the "audit" command.
func (c *CLI) auditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check every stored menu for malformed references",
		Long: `Check every stored menu for duplicate ids, missing parents and cycles.
Exits with an error when any problem is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB()
			if err != nil {
				return err
			}
			defer closeDB(db, c.logger)

			reports, err := service.NewMenuService(db, nil, nil, c.logger).Audit(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(reports) == 0 {
				_, _ = fmt.Fprintln(out, "all menus are well formed")
				return nil
			}

			names := make([]string, 0, len(reports))
			for name := range reports {
				names = append(names, name)
			}
			sort.Strings(names)

			total := 0
			for _, name := range names {
				r := reports[name]
				_, _ = fmt.Fprintf(out, "%s: %d duplicate ids, %d dangling parents, %d cycles\n", name,
					r.Count(menu.ProblemDuplicateID), r.Count(menu.ProblemDanglingParent), r.Count(menu.ProblemCycle))
				for _, p := range r.Problems {
					_, _ = fmt.Fprintf(out, "  %s\n", p.String())
					total++
				}
			}
			return fmt.Errorf("found %d malformed references in %d menus", total, len(reports))
		},
	}
}
