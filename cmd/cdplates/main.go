// Command cdplates decodes Argentine diplomatic plates from the terminal and can
// run the HTTP service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cdplates/cdplates/internal/config"
	"github.com/cdplates/cdplates/internal/logging"
	"github.com/cdplates/cdplates/internal/plate"
	"github.com/cdplates/cdplates/internal/server"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:           "cdplates",
	Short:         "Decode Argentine diplomatic license plates",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var decodeCmd = &cobra.Command{
	Use:   "decode <plate>...",
	Short: "Decode plates or two-letter country codes",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDecode,
}

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List the country and organization codes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		countries := plate.Countries()
		rows := make([][2]string, 0, len(countries))
		for _, c := range countries {
			rows = append(rows, [2]string{c.Code, c.Name})
		}
		return printTable(cmd.OutOrStdout(), countries, rows)
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the plate categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		categories := plate.Categories()
		rows := make([][2]string, 0, len(categories))
		for _, c := range categories {
			rows = append(rows, [2]string{c.Code, c.Name})
		}
		return printTable(cmd.OutOrStdout(), categories, rows)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, configured from the environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logging.Setup(cfg.Logging)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return server.Run(ctx, cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")
	rootCmd.AddCommand(decodeCmd, countriesCmd, categoriesCmd, serveCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runDecode(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0

	for _, arg := range args {
		result := plate.Parse(arg)
		if !result.OK() {
			failed++
		}

		if jsonOutput {
			if err := writeJSON(out, result); err != nil {
				return err
			}
			continue
		}
		writeDetails(out, plate.BuildDetails(result, nil))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs could not be decoded", failed, len(args))
	}
	return nil
}

func writeDetails(out io.Writer, d plate.DetailsView) {
	fmt.Fprintln(out, d.Input)
	if d.ErrorMessage != "" {
		fmt.Fprintf(out, "  %s\n", d.ErrorMessage)
		return
	}
	if d.Country != "" {
		fmt.Fprintf(out, "  País: %s\n", d.Country)
	}
	if d.Category.Visible {
		fmt.Fprintf(out, "  Categoría: %s\n", d.Category.Label)
	}
	if d.ChiefOfMission.Visible {
		fmt.Fprintf(out, "  %s: %s\n", d.ChiefOfMission.Prefix, d.ChiefOfMission.Text)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, seg := range d.Decomposition.Segments {
		fmt.Fprintf(tw, "    %s\t%s\t%s\n", seg.Text, seg.Role, seg.Tooltip)
	}
	tw.Flush()
}

func printTable(out io.Writer, v any, rows [][2]string) error {
	if jsonOutput {
		return writeJSON(out, v)
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
