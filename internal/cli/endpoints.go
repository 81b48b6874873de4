package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zebapy/openapi-fetcher/internal/endpoint"
	"github.com/zebapy/openapi-fetcher/internal/spec"
)

func newEndpointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoints <spec>",
		Short: "List a spec's endpoints grouped by tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag, err := cmd.Flags().GetString("tag")
			if err != nil {
				return err
			}
			method, err := cmd.Flags().GetString("method")
			if err != nil {
				return err
			}
			return runEndpoints(cmd, strings.TrimSpace(args[0]), strings.TrimSpace(tag), strings.ToUpper(strings.TrimSpace(method)))
		},
	}
	cmd.Flags().String("tag", "", "Only show endpoints in this tag group")
	cmd.Flags().String("method", "", "Only show endpoints using this HTTP method")
	return cmd
}

func runEndpoints(cmd *cobra.Command, name, tag, method string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	endpoints, err := loadEndpoints(cmd.Context(), st, name)
	if err != nil {
		return err
	}
	if method != "" {
		var filtered []endpoint.Endpoint
		for _, ep := range endpoints {
			if ep.Method == method {
				filtered = append(filtered, ep)
			}
		}
		endpoints = filtered
	}

	out := cmd.OutOrStdout()
	groups := endpoint.GroupByTag(endpoints)
	shown := 0
	for _, g := range groups {
		if tag != "" && g.Tag != tag {
			continue
		}
		fmt.Fprintf(out, "%s\n", g.Tag)
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, ep := range g.Endpoints {
			auth := ""
			if ep.HasAuth {
				auth = "[auth]"
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", ep.Method, ep.Path, ep.Summary, auth)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(out, "no endpoints")
	}
	return nil
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <spec> <METHOD> <PATH>",
		Short: "Show one endpoint's parameters and body fields",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, strings.TrimSpace(args[0]), args[1], args[2])
		},
	}
}

func runShow(cmd *cobra.Command, name, method, path string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	endpoints, err := loadEndpoints(cmd.Context(), st, name)
	if err != nil {
		return err
	}
	ep, ok := endpoint.Find(endpoints, method, path)
	if !ok {
		return newUsageError(fmt.Sprintf("no endpoint %s %s in spec %q", strings.ToUpper(method), path, name))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", ep.Method, ep.Path)
	if ep.Summary != "" {
		fmt.Fprintln(out, ep.Summary)
	}
	if ep.Description != "" {
		fmt.Fprintln(out, ep.Description)
	}
	if len(ep.Tags) > 0 {
		fmt.Fprintf(out, "Tags: %s\n", strings.Join(ep.Tags, ", "))
	}
	if ep.HasAuth {
		fmt.Fprintln(out, "Requires authentication")
	}

	printParamSection(out, "Path parameters", endpoint.PathParams(ep))
	printParamSection(out, "Query parameters", endpoint.QueryParams(ep))
	printParamSection(out, "Header parameters", endpoint.HeaderParams(ep))

	if body := endpoint.BodyParams(ep); len(body) > 0 {
		fmt.Fprintf(out, "\nBody (%s):\n", endpoint.RequestBodyContentType(ep))
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, bp := range body {
			example := ""
			if bp.Example != nil {
				example = fmt.Sprintf("e.g. %v", bp.Example)
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", bp.Name, bp.Type, requiredMark(bp.Required), bp.Description, example)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func printParamSection(out io.Writer, label string, params []spec.Parameter) {
	if len(params) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s:\n", label)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, p := range params {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", p.Name, endpoint.TypeString(p.Schema), requiredMark(p.Required), p.Description)
	}
	w.Flush()
}

func requiredMark(required bool) string {
	if required {
		return "required"
	}
	return ""
}
