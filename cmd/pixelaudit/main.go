package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pixelwatch/interfaces/go/client"
	"pixelwatch/internal/analysis"
	"pixelwatch/internal/domain"
	"pixelwatch/internal/report"
)

var (
	inputFile  string
	serverURL  string
	jsonOutput bool
	verbose    bool

	timeoutMs         int
	slowResponseMs    int
	duplicateWindowMs int
)

var rootCmd = &cobra.Command{
	Use:   "pixelaudit",
	Short: "Analyze a captured set of ad/measurement requests for delivery issues",
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == "" && serverURL == "" {
			return fmt.Errorf("provide a capture file (-f) or a running server (--server)")
		}
		records, err := loadRecords()
		if err != nil {
			return err
		}

		engine := analysis.NewEngine(analysis.Thresholds{
			Timeout:         time.Duration(timeoutMs) * time.Millisecond,
			SlowResponse:    time.Duration(slowResponseMs) * time.Millisecond,
			DuplicateWindow: time.Duration(duplicateWindowMs) * time.Millisecond,
		})
		analyze(engine, records)
		summary := analysis.Summarize(records)

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(map[string]any{
				"records": records,
				"summary": summary,
			})
		}
		printBanner()
		th := engine.Thresholds()
		fmt.Printf("analyzed %d request(s) (timeout %s, slow %s, duplicate window %s)\n",
			len(records), th.Timeout, th.SlowResponse, th.DuplicateWindow)
		report.PrintRecords(os.Stdout, records, verbose)
		report.PrintSummary(os.Stdout, summary)
		return nil
	},
}

func loadRecords() ([]domain.RequestRecord, error) {
	if serverURL != "" {
		records, _, err := client.New(serverURL).Export()
		if err != nil {
			return nil, fmt.Errorf("fetch capture from %s: %w", serverURL, err)
		}
		return records, nil
	}
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return nil, err
	}
	// accept either a bare record array or an export document
	var records []domain.RequestRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}
	var doc struct {
		Records []domain.RequestRecord `json:"records"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", inputFile, err)
	}
	return doc.Records, nil
}

// analyze runs a full detection pass, replacing each record's issue list.
func analyze(engine *analysis.Engine, records []domain.RequestRecord) {
	now := time.Now()
	cross := engine.DetectCrossRequestIssues(records)
	for i := range records {
		issues := engine.DetectRecordIssues(records[i], now)
		issues = append(issues, cross[records[i].ID]...)
		records[i].Issues = issues
	}
}

func printBanner() {
	figure.NewColorFigure("PIXELAUDIT", "doom", "cyan", true).Print()
	_, _ = color.New(color.FgCyan).Println("════════════════════════════════════════════════")
}

func main() {
	rootCmd.Flags().StringVarP(&inputFile, "file", "f", "", "capture file (JSON records or export document)")
	rootCmd.Flags().StringVar(&serverURL, "server", "", "base URL of a running pixelwatch server")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit raw JSON instead of a report")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include clean records in the report")
	rootCmd.Flags().IntVar(&timeoutMs, "timeout-ms", 10000, "pending-request timeout threshold")
	rootCmd.Flags().IntVar(&slowResponseMs, "slow-ms", 3000, "slow-response threshold")
	rootCmd.Flags().IntVar(&duplicateWindowMs, "dup-window-ms", 1000, "duplicate pixel window")
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
