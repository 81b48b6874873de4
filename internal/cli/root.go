package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zebapy/openapi-fetcher/internal/endpoint"
	"github.com/zebapy/openapi-fetcher/internal/spec"
	"github.com/zebapy/openapi-fetcher/internal/store"
)

// Execute runs the oaf CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "oaf",
		Short:         "Browse OpenAPI specs and generate runnable requests",
		Long:          "oaf registers OpenAPI/Swagger documents, lists their endpoints, and turns them into shell-safe cURL commands or live HTTP calls with optional authentication.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage
	// errors that also show the command's help text.
	flagErr := func(c *cobra.Command, err error) error {
		return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
	}
	cmd.SetFlagErrorFunc(flagErr)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().String("data-dir", "", "Data directory (default ~/.oaf)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	for _, sub := range []*cobra.Command{
		newSpecsCmd(),
		newEndpointsCmd(),
		newShowCmd(),
		newCurlCmd(),
		newCallCmd(),
		newTokensCmd(),
		newHistoryCmd(),
	} {
		sub.SetFlagErrorFunc(flagErr)
		cmd.AddCommand(sub)
	}

	return cmd
}

// openStore resolves the data directory and opens the repositories.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return nil, err
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return nil, fmt.Errorf("resolve home dir: %w", herr)
		}
		dir = filepath.Join(home, ".oaf")
	}
	return store.Open(dir)
}

func isURL(input string) bool {
	u, err := url.Parse(input)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// loadBySource parses the document behind a source URL or file path, filling
// the body cache for URL sources so repeated browsing avoids refetching.
func loadBySource(ctx context.Context, st *store.Store, source string) (*spec.Document, error) {
	if !isURL(source) {
		return spec.Load(ctx, source)
	}
	if data := st.Cache.Get(source); data != nil {
		if doc, err := spec.LoadFromData(ctx, data); err == nil {
			return doc, nil
		}
		// A cached body that no longer parses is useless; drop it.
		st.Cache.Invalidate(source)
	}
	data, err := spec.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	doc, err := spec.LoadFromData(ctx, data)
	if err != nil {
		return nil, err
	}
	if cerr := st.Cache.Put(source, data); cerr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to cache spec: %v\n", cerr)
	}
	return doc, nil
}

// loadSpecDoc resolves a registered spec by name and parses its document.
func loadSpecDoc(ctx context.Context, st *store.Store, name string) (*spec.Document, error) {
	rec, err := st.Specs.Get(name)
	if err != nil {
		return nil, err
	}
	return loadBySource(ctx, st, rec.Source)
}

// loadEndpoints resolves a registered spec by name and extracts its
// endpoints.
func loadEndpoints(ctx context.Context, st *store.Store, name string) ([]endpoint.Endpoint, error) {
	doc, err := loadSpecDoc(ctx, st, name)
	if err != nil {
		return nil, err
	}
	return endpoint.Extract(doc), nil
}

// specErrorMessage flattens a structured loader error into a friendly
// multi-line message.
func specErrorMessage(se *spec.SpecError) string {
	msg := fmt.Sprintf("spec: %s", se.Message)
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return msg
}
