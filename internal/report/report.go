// Package report generates evaluation reports for scored fraud datasets.
// It writes a human-readable summary, CSV exports of the threshold sweep and
// alert-budget ranking, and a JSON report for downstream tooling.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/eval"
)

// Results collects everything a single evaluation run produced.
type Results struct {
	DatasetPath string
	Rows        int
	Positives   int
	Threshold   float64
	Confusion   eval.ConfusionCounts
	Stats       eval.Stats
	Sweep       []eval.SweepPoint
	TopK        *eval.TopKResult
}

// Reporter writes evaluation results to an output directory.
type Reporter struct {
	results    *Results
	outputPath string
}

// NewReporter creates a new reporter.
func NewReporter(results *Results, outputPath string) *Reporter {
	return &Reporter{
		results:    results,
		outputPath: outputPath,
	}
}

// GenerateReport generates all report formats.
func (r *Reporter) GenerateReport() error {
	if err := os.MkdirAll(r.outputPath, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := r.generateSummary(); err != nil {
		return err
	}

	if err := r.generateSweepCSV(); err != nil {
		return err
	}

	if r.results.TopK != nil {
		if err := r.generateTopKCSV(); err != nil {
			return err
		}
	}

	return r.generateJSONReport()
}

// generateSummary generates a human-readable summary.
func (r *Reporter) generateSummary() error {
	summaryPath := filepath.Join(r.outputPath, "evaluation_summary.txt")
	file, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	res := r.results

	fmt.Fprintf(file, "FRAUD MODEL EVALUATION SUMMARY\n")
	fmt.Fprintf(file, "==============================\n\n")

	fmt.Fprintf(file, "Dataset: %s\n", res.DatasetPath)
	fmt.Fprintf(file, "Rows: %d (%d positive)\n", res.Rows, res.Positives)
	fmt.Fprintf(file, "Decision Threshold: %.4f\n\n", res.Threshold)

	fmt.Fprintf(file, "CONFUSION MATRIX\n")
	fmt.Fprintf(file, "----------------\n")
	fmt.Fprintf(file, "True Positives: %d\n", res.Confusion.TP)
	fmt.Fprintf(file, "False Positives: %d\n", res.Confusion.FP)
	fmt.Fprintf(file, "True Negatives: %d\n", res.Confusion.TN)
	fmt.Fprintf(file, "False Negatives: %d\n\n", res.Confusion.FN)

	fmt.Fprintf(file, "CLASSIFICATION METRICS\n")
	fmt.Fprintf(file, "----------------------\n")
	fmt.Fprintf(file, "Precision: %s\n", formatRatio(res.Stats.Precision))
	fmt.Fprintf(file, "Recall: %s\n", formatRatio(res.Stats.Recall))
	fmt.Fprintf(file, "F1: %s\n", formatRatio(res.Stats.F1))
	fmt.Fprintf(file, "Accuracy: %s\n", formatRatio(res.Stats.Accuracy))

	if res.TopK != nil {
		fmt.Fprintf(file, "\nALERT BUDGET (top %d)\n", res.TopK.K)
		fmt.Fprintf(file, "---------------------\n")
		fmt.Fprintf(file, "Precision@K: %s\n", formatRatio(res.TopK.PrecisionAtK))
		fmt.Fprintf(file, "Recall@K: %s\n", formatRatio(res.TopK.RecallAtK))
	}

	log.Info().Str("file", summaryPath).Msg("Summary report generated")
	return nil
}

// generateSweepCSV generates a CSV of metrics across candidate thresholds.
func (r *Reporter) generateSweepCSV() error {
	csvPath := filepath.Join(r.outputPath, "threshold_sweep.csv")
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create sweep report: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"threshold", "precision", "recall", "f1", "flagged"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, p := range r.results.Sweep {
		record := []string{
			fmt.Sprintf("%.2f", p.Threshold),
			formatRatio(p.Precision),
			formatRatio(p.Recall),
			formatRatio(p.F1),
			fmt.Sprintf("%d", p.Flagged),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	log.Info().Str("file", csvPath).Msg("Threshold sweep generated")
	return nil
}

// generateTopKCSV generates a CSV of the ranked alert list.
func (r *Reporter) generateTopKCSV() error {
	csvPath := filepath.Join(r.outputPath, "top_k_alerts.csv")
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create alert report: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"rank", "id", "fraud_probability", "actual"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for i, alert := range r.results.TopK.Alerts {
		record := []string{
			fmt.Sprintf("%d", i+1),
			alert.ID,
			fmt.Sprintf("%g", alert.Probability),
			fmt.Sprintf("%d", alert.Actual),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	log.Info().Str("file", csvPath).Msg("Alert report generated")
	return nil
}

// generateJSONReport generates a JSON report with all data. Undefined ratios
// are rendered as the string "NaN" because JSON has no NaN literal.
func (r *Reporter) generateJSONReport() error {
	jsonPath := filepath.Join(r.outputPath, "evaluation_results.json")

	res := r.results
	report := map[string]interface{}{
		"summary": map[string]interface{}{
			"dataset":   res.DatasetPath,
			"rows":      res.Rows,
			"positives": res.Positives,
			"threshold": res.Threshold,
			"confusion": res.Confusion,
			"precision": ratioJSON(res.Stats.Precision),
			"recall":    ratioJSON(res.Stats.Recall),
			"f1":        ratioJSON(res.Stats.F1),
			"accuracy":  ratioJSON(res.Stats.Accuracy),
		},
		"sweep":        sweepJSON(res.Sweep),
		"generated_at": time.Now(),
	}

	if res.TopK != nil {
		report["top_k"] = map[string]interface{}{
			"k":              res.TopK.K,
			"precision_at_k": ratioJSON(res.TopK.PrecisionAtK),
			"recall_at_k":    ratioJSON(res.TopK.RecallAtK),
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}

	log.Info().Str("file", jsonPath).Msg("JSON report generated")
	return nil
}

// PrintSummary writes a one-screen summary to stdout for CLI runs.
func (r *Reporter) PrintSummary() {
	res := r.results

	fmt.Printf("\n=== EVALUATION RESULTS ===\n")
	fmt.Printf("Rows: %d (%d positive), threshold %.4f\n", res.Rows, res.Positives, res.Threshold)
	fmt.Printf("TP %d  FP %d  TN %d  FN %d\n",
		res.Confusion.TP, res.Confusion.FP, res.Confusion.TN, res.Confusion.FN)
	fmt.Printf("Precision %s  Recall %s  F1 %s  Accuracy %s\n",
		formatRatio(res.Stats.Precision), formatRatio(res.Stats.Recall),
		formatRatio(res.Stats.F1), formatRatio(res.Stats.Accuracy))
	if res.TopK != nil {
		fmt.Printf("Top-%d: precision %s, recall %s\n",
			res.TopK.K, formatRatio(res.TopK.PrecisionAtK), formatRatio(res.TopK.RecallAtK))
	}
}

func formatRatio(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.4f", v)
}

func ratioJSON(v float64) interface{} {
	if math.IsNaN(v) {
		return "NaN"
	}
	return v
}

func sweepJSON(points []eval.SweepPoint) []map[string]interface{} {
	out := make([]map[string]interface{}, len(points))
	for i, p := range points {
		out[i] = map[string]interface{}{
			"threshold": p.Threshold,
			"precision": ratioJSON(p.Precision),
			"recall":    p.Recall,
			"f1":        ratioJSON(p.F1),
			"flagged":   p.Flagged,
		}
	}
	return out
}
