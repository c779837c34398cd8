package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/template"
	"time"

	"github.com/niveshq/backtest/internal/id"
	"github.com/niveshq/backtest/ledger"
)

// Exporter writes a run's outputs into its own directory,
// baseDir/<runID>/, so repeated runs never overwrite each other.
type Exporter struct {
	BaseDir string
	RunID   string
}

// NewExporter allocates a fresh run directory name under baseDir.
func NewExporter(baseDir string) *Exporter {
	return &Exporter{BaseDir: baseDir, RunID: id.New()}
}

// Dir returns the run directory path.
func (e *Exporter) Dir() string {
	return filepath.Join(e.BaseDir, e.RunID)
}

// WriteAll persists the closed-trade table, the MTM report table, the
// combined structured export and the text summary. Report generation is
// re-runnable into a fresh directory, so no partial-file cleanup is
// attempted on error.
func (e *Exporter) WriteAll(rows []Row, trades []ledger.ClosedTrade) error {
	if err := os.MkdirAll(e.Dir(), 0o755); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := e.WriteTradesCSV(trades); err != nil {
		return err
	}
	if err := e.WriteReportCSV(rows); err != nil {
		return err
	}
	if err := e.writeCombined(rows, trades); err != nil {
		return err
	}
	return e.writeSummary(rows)
}

// WriteTradesCSV writes closePnl.csv.
func (e *Exporter) WriteTradesCSV(trades []ledger.ClosedTrade) error {
	f, err := os.Create(filepath.Join(e.Dir(), "closePnl.csv"))
	if err != nil {
		return fmt.Errorf("export trades: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"key", "exit_time", "symbol", "entry_price", "exit_price", "quantity", "direction", "pnl", "exit_type"}); err != nil {
		return err
	}
	for _, tr := range trades {
		if err := w.Write([]string{
			tr.Key.Format(time.RFC3339),
			tr.ExitTime.Format(time.RFC3339),
			tr.Symbol,
			fmtF(tr.EntryPrice),
			fmtF(tr.ExitPrice),
			strconv.Itoa(tr.Quantity),
			strconv.Itoa(int(tr.Direction)),
			fmtF(tr.RealizedPnl),
			tr.ExitType,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteReportCSV writes mtmReport.csv.
func (e *Exporter) WriteReportCSV(rows []Row) error {
	f, err := os.Create(filepath.Join(e.Dir(), "mtmReport.csv"))
	if err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"time", "open_trades", "capital_invested", "cumulative_pnl", "mtm_pnl", "peak", "drawdown"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{
			r.Time.Format(time.RFC3339),
			strconv.Itoa(r.OpenTrades),
			fmtF(r.CapitalInvested),
			fmtF(r.CumulativePnl),
			fmtF(r.MtmPnl),
			fmtF(r.Peak),
			fmtF(r.Drawdown),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

type combinedExport struct {
	RunID       string               `json:"runId"`
	GeneratedAt time.Time            `json:"generatedAt"`
	Trades      []ledger.ClosedTrade `json:"trades"`
	Report      []Row                `json:"report"`
}

func (e *Exporter) writeCombined(rows []Row, trades []ledger.ClosedTrade) error {
	out := combinedExport{
		RunID:       e.RunID,
		GeneratedAt: time.Now().UTC(),
		Trades:      trades,
		Report:      rows,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("export combined: %w", err)
	}
	return os.WriteFile(filepath.Join(e.Dir(), "combined.json"), data, 0o644)
}

var summaryTmpl = template.Must(template.New("summary").Funcs(template.FuncMap{
	"f2": func(x float64) string { return strconv.FormatFloat(x, 'f', 2, 64) },
}).Parse(`==================================================
 MTM Report Summary
==================================================
Run ID:          {{.RunID}}
Buckets:         {{.Buckets}}
{{- if .Buckets}}
Period:          {{.Start}} .. {{.End}}

Capital Invested
--------------------------------------------------
Max:             {{f2 .Sum.MaxCapital}}
Mean:            {{f2 .Sum.MeanCapital}}
Median:          {{f2 .Sum.MedianCapital}}

Performance
--------------------------------------------------
Final Cum PnL:   {{f2 .Sum.FinalCumulativePnl}}
Max Drawdown:    {{f2 .Sum.MaxDrawdown}}
Peak At Trough:  {{f2 .Sum.PeakAtTrough}}
DD % of Capital: {{f2 .Sum.DrawdownPctOfTroughCapital}}
DD % of Mean:    {{f2 .Sum.DrawdownPctOfMeanCapital}}
{{- end}}
`))

func (e *Exporter) writeSummary(rows []Row) error {
	data := struct {
		RunID      string
		Buckets    int
		Start, End string
		Sum        Summary
	}{
		RunID:   e.RunID,
		Buckets: len(rows),
		Sum:     Summarize(rows),
	}
	if len(rows) > 0 {
		data.Start = rows[0].Time.Format(time.RFC3339)
		data.End = rows[len(rows)-1].Time.Format(time.RFC3339)
	}

	f, err := os.Create(filepath.Join(e.Dir(), "summary.txt"))
	if err != nil {
		return fmt.Errorf("export summary: %w", err)
	}
	defer f.Close()
	return summaryTmpl.Execute(f, data)
}

func fmtF(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
