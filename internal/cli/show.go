package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"NewsSignal/internal/board"
	"NewsSignal/internal/domain"
)

type showOptions struct {
	selection  map[board.Facet]*[]string
	facetsOnly bool
	limit      int
	wide       bool
}

func newShowCommand(opts *rootOptions) *cobra.Command {
	show := &showOptions{selection: map[board.Facet]*[]string{}}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the canonical dataset with optional facet filters",
		Long: `show reads the canonical dataset and prints the matching rows newest first.
Values given for one facet are alternatives; different facets must all match.

Examples:
  newssignal show --signal BULL --signal BEAR
  newssignal show --publisher 매일경제 --region 서울
  newssignal show --facets`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.cfg.Dataset.CanonicalPath()
			rows, err := board.Load(path)
			if err != nil {
				return err
			}
			opts.logger.Debug("canonical dataset loaded", "path", path, "rows", len(rows))

			if show.facetsOnly {
				return printFacets(cmd.OutOrStdout(), board.Facets(rows))
			}
			return show.render(cmd.OutOrStdout(), rows)
		},
	}

	for _, f := range board.AllFacets {
		values := []string{}
		show.selection[f] = &values
		cmd.Flags().StringSliceVar(show.selection[f], string(f), nil, fmt.Sprintf("keep rows whose %s is one of these values", f))
	}
	cmd.Flags().BoolVar(&show.facetsOnly, "facets", false, "list the available values per facet instead of rows")
	cmd.Flags().IntVar(&show.limit, "limit", 50, "maximum rows to print (0 prints all)")
	cmd.Flags().BoolVar(&show.wide, "wide", false, "include summary and link columns")
	return cmd
}

func (s *showOptions) render(w io.Writer, rows []board.Row) error {
	sel := board.Selection{}
	for f, values := range s.selection {
		if len(*values) > 0 {
			sel[f] = normalizeValues(f, *values)
		}
	}
	matched := board.Filter(rows, sel)
	fmt.Fprintf(w, "total %d / %d\n", len(matched), len(rows))

	if s.limit > 0 && len(matched) > s.limit {
		matched = matched[:s.limit]
	}
	if len(matched) == 0 {
		return nil
	}

	header := []string{"COLLECTED_AT", "SIGNAL", "PUBLISHER", "REGION", "KEYWORD", "TITLE"}
	if s.wide {
		header = append(header, "SUMMARY", "LINK")
	}
	table := newTable(w)
	table.Header(header)
	for _, r := range matched {
		line := []string{r.CollectedAt, paintSignal(r.Signal), r.Publisher, r.Region, r.Keyword, r.Title}
		if s.wide {
			line = append(line, strings.ReplaceAll(r.Display, "\n", " "), r.Link)
		}
		if err := table.Append(line); err != nil {
			return err
		}
	}
	return table.Render()
}

func printFacets(w io.Writer, facets map[board.Facet][]string) error {
	for _, f := range board.AllFacets {
		if _, err := fmt.Fprintf(w, "%s (%d): %s\n", f, len(facets[f]), strings.Join(facets[f], ", ")); err != nil {
			return err
		}
	}
	return nil
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
}

// BULL is red and BEAR blue, following the Korean market convention.
func paintSignal(s domain.Signal) string {
	switch s {
	case domain.SignalBull:
		return color.New(color.FgRed, color.Bold).Sprint(s)
	case domain.SignalBear:
		return color.New(color.FgBlue, color.Bold).Sprint(s)
	default:
		return color.New(color.FgHiBlack).Sprint(s)
	}
}

func normalizeValues(f board.Facet, values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if f == board.FacetSignal {
			v = strings.ToUpper(v)
		}
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
