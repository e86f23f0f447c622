package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"sharevault/internal/core"
)

const maxCellWidth = 48

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	senderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var analyseCmd = &cobra.Command{
	Use:   "analyse FILE",
	Short: "Analyse one chat export and print the shared links",
	Long: `Analyse reads a chat export from disk, collects the shared links and prints
them as JSON (the same shape the upload endpoint returns) or as a table.
The default expansion flags select which lookups run.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyse,
}

func init() {
	analyseCmd.Flags().Bool("table", false, "Print a table instead of JSON")
}

func runAnalyse(cmd *cobra.Command, args []string) error {
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// the CLI never deletes the file it was pointed at
	analyser, err := buildAnalyser(ctx, config, false, core.NopRecorder())
	if err != nil {
		return err
	}

	records, err := analyser.AnalyseFile(ctx, args[0], config.App.Defaults)
	if err != nil {
		return err
	}

	asTable, _ := cmd.Flags().GetBool("table")
	if asTable {
		return renderTable(cmd.OutOrStdout(), records)
	}
	return renderJSON(cmd.OutOrStdout(), records)
}

func renderJSON(w io.Writer, records []core.LinkRecord) error {
	if records == nil {
		records = []core.LinkRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func renderTable(w io.Writer, records []core.LinkRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, headerStyle.Render("No links found"))
		return err
	}

	if _, err := fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Found %d link(s)", len(records)))); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join([]string{
		titleStyle.Render("Shared"),
		titleStyle.Render("By"),
		titleStyle.Render("Type"),
		titleStyle.Render("Name"),
		titleStyle.Render("URL"),
	}, "\t"))

	for _, rec := range records {
		kind := "-"
		if rec.Kind != core.KindUnclassified {
			kind = rec.Kind.String()
		}

		name := rec.Name
		if rec.Artists != "" {
			name = rec.Artists + " - " + name
		}
		if name == "" {
			name = "-"
		}

		_, _ = fmt.Fprintln(tw, strings.Join([]string{
			dimStyle.Render(rec.Timestamp),
			senderStyle.Render(truncate(rec.Sender)),
			kindStyle.Render(kind),
			truncate(name),
			rec.URL,
		}, "\t"))
	}

	return tw.Flush()
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxCellWidth {
		return s
	}
	return string(runes[:maxCellWidth-3]) + "..."
}
