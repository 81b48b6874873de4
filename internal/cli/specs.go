package cli

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zebapy/openapi-fetcher/internal/spec"
	"github.com/zebapy/openapi-fetcher/internal/store"
)

func newSpecsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "specs",
		Short: "Manage registered OpenAPI specs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newSpecsAddCmd(), newSpecsListCmd(), newSpecsRemoveCmd(), newSpecsRefreshCmd())
	return cmd
}

func newSpecsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <url|path>",
		Short: "Register an OpenAPI/Swagger document by URL or file path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := cmd.Flags().GetString("name")
			if err != nil {
				return err
			}
			return runSpecsAdd(cmd, strings.TrimSpace(args[0]), strings.TrimSpace(name))
		},
	}
	cmd.Flags().String("name", "", "Name to register the spec under (derived from its title when omitted)")
	return cmd
}

func runSpecsAdd(cmd *cobra.Command, source, name string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	// Load and validate before touching the store: a failed add must not
	// create a spec record.
	doc, err := loadBySource(cmd.Context(), st, source)
	if err != nil {
		var se *spec.SpecError
		if errors.As(err, &se) {
			return newUsageError(specErrorMessage(se))
		}
		return err
	}

	if name == "" {
		name = deriveSpecName(doc.Info.Title)
		if name == "" {
			return newUsageError("specs add: cannot derive a name from the spec title, use --name")
		}
	}

	rec := store.SpecRecord{
		Name:    name,
		Source:  source,
		Title:   doc.Info.Title,
		Version: doc.Info.Version,
		AddedAt: time.Now().UTC(),
	}
	if err := st.Specs.Add(rec); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s %s)\n", name, rec.Title, rec.Version)
	return nil
}

func newSpecsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered specs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			records, err := st.Specs.List()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no specs registered")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTITLE\tVERSION\tSOURCE")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rec.Name, rec.Title, rec.Version, rec.Source)
			}
			return w.Flush()
		},
	}
}

func newSpecsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a registered spec and its cached body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[0])
			rec, err := st.Specs.Get(name)
			if err != nil {
				return err
			}
			if err := st.Specs.Remove(name); err != nil {
				return err
			}
			st.Cache.Invalidate(rec.Source)
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", name)
			return nil
		},
	}
}

func newSpecsRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <name>",
		Short: "Re-fetch a registered spec, bypassing the cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(cmd)
			if err != nil {
				return err
			}
			name := strings.TrimSpace(args[0])
			rec, err := st.Specs.Get(name)
			if err != nil {
				return err
			}
			st.Cache.Invalidate(rec.Source)
			doc, err := loadBySource(cmd.Context(), st, rec.Source)
			if err != nil {
				var se *spec.SpecError
				if errors.As(err, &se) {
					return newUsageError(specErrorMessage(se))
				}
				return err
			}
			rec.Title = doc.Info.Title
			rec.Version = doc.Info.Version
			if err := st.Specs.Update(rec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "refreshed %s (%s %s)\n", name, rec.Title, rec.Version)
			return nil
		},
	}
}

var specNameRe = regexp.MustCompile(`[^a-z0-9]+`)

// deriveSpecName slugs a spec title into a registry name: lowercase,
// hyphen-separated, trimmed.
func deriveSpecName(title string) string {
	slug := specNameRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	return strings.Trim(slug, "-")
}
