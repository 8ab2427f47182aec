package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/RD-Observatory/internal/application/dashboard"
	"github.com/turtacn/RD-Observatory/internal/application/ingest"
	"github.com/turtacn/RD-Observatory/internal/config"
	"github.com/turtacn/RD-Observatory/internal/domain/geo"
	"github.com/turtacn/RD-Observatory/internal/domain/observation"
)

// NewRankCmd builds the offline ranking preview: parse a source CSV and
// print the ranked series without touching any infrastructure.
func NewRankCmd(opts *RootOptions) *cobra.Command {
	var (
		year   int
		sector string
		lang   string
	)

	cmd := &cobra.Command{
		Use:   "rank <file>",
		Short: "Preview the ranked series for a source CSV",
		Long:  "rank parses a source table locally and prints the ranked,\ncolored series the dashboard would serve for it. Useful to inspect a\nfile before importing it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reference, err := loadReference(opts)
			if err != nil {
				return err
			}

			sec, err := observation.ParseSector(sector)
			if err != nil {
				return err
			}
			language, err := geo.ParseLanguage(lang, geo.LangSpanish)
			if err != nil {
				return err
			}

			store := ingest.NewStore()
			loader := ingest.NewLoader(nil, nil, store, nil, nil, nil, nil)
			if _, err := loader.ImportFile(cmd.Context(), args[0]); err != nil {
				return err
			}

			if year == 0 {
				ds, err := store.Current()
				if err != nil {
					return err
				}
				years := ds.Years()
				year = years[len(years)-1]
			}

			defaults := &config.Config{}
			config.ApplyDefaults(defaults)

			pipeline := dashboard.NewService(store, geo.NewResolver(reference), nil, defaults.Dashboard, nil, nil)
			result, err := pipeline.Ranking(cmd.Context(), year, sec, language)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "dataset %s, year %d, sector %s (%d ranked)\n\n",
				result.DatasetVersion, result.Year, result.Sector, result.TotalRanked)
			fmt.Fprintln(cmd.OutOrStdout(), renderRankingTable(result))
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year to rank (default: latest in the file)")
	cmd.Flags().StringVar(&sector, "sector", "TOTAL", "sector to rank")
	cmd.Flags().StringVar(&lang, "lang", "es", "display language (es, en)")
	return cmd
}

// renderRankingTable formats the ranked series as an aligned text table.
func renderRankingTable(result *dashboard.RankingResult) string {
	headers := []string{"RANK", "ENTITY", "VALUE", "COLOR"}
	rows := make([][]string, 0, len(result.Items))
	for _, it := range result.Items {
		rank := "-"
		if it.Rank > 0 {
			rank = strconv.Itoa(it.Rank)
		}
		value := strconv.FormatFloat(it.DisplayValue, 'f', -1, 64)
		if it.IsAveraged {
			value += " (avg)"
		}
		rows = append(rows, []string{rank, it.DisplayName, value, it.Color.Hex()})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(cell + strings.Repeat(" ", widths[i]-len(cell)))
		}
		sb.WriteString("\n")
	}
	writeRow(headers)
	for i, w := range widths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(strings.Repeat("-", w))
	}
	sb.WriteString("\n")
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}
