package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/eval"
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/ml"
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/report"
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/schema"
	"github.com/sathwikreddyshamakuri/credit-card-fraud-detector/internal/scoring"
)

func main() {
	var (
		statsPath  = flag.String("stats", "artifacts/feature_stats.json", "Path to feature stats JSON")
		modelPath  = flag.String("model", "artifacts/model.json", "Path to model coefficients JSON")
		inputPath  = flag.String("input", "", "Raw transaction CSV to score")
		scoredPath = flag.String("scored", "", "Scored CSV: output of scoring, input of evaluation")
		truthCol   = flag.String("truth", "Class", "Ground truth column name")
		threshold  = flag.Float64("threshold", scoring.DefaultThreshold, "Decision threshold for the confusion matrix")
		sweepList  = flag.String("sweep", "", "Comma-separated thresholds to sweep (default: 0.00..1.00 grid)")
		topK       = flag.Int("k", 0, "Alert budget for top-K evaluation (0 disables)")
		popRows    = flag.Int("rows", 0, "Full dataset row count when the scored CSV is a partial export")
		popPos     = flag.Int("positives", 0, "Full dataset positive count when the scored CSV is a partial export")
		outputPath = flag.String("output", "reports", "Output directory for reports")
		logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *inputPath == "" && *scoredPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: pass -input to score a CSV and/or -scored to evaluate one")
		flag.Usage()
		os.Exit(2)
	}

	if *inputPath != "" {
		if *scoredPath == "" {
			*scoredPath = strings.TrimSuffix(*inputPath, ".csv") + "_scored.csv"
		}
		scoreCSV(*statsPath, *modelPath, *inputPath, *scoredPath, *threshold)
	}

	if *scoredPath != "" {
		evaluate(evalParams{
			scoredPath: *scoredPath,
			truthCol:   *truthCol,
			threshold:  *threshold,
			sweepList:  *sweepList,
			topK:       *topK,
			popRows:    *popRows,
			popPos:     *popPos,
			outputPath: *outputPath,
		})
	}
}

// scoreCSV runs the batch scoring path: every input row gets fraud_probability
// and is_fraud_pred columns appended in order.
func scoreCSV(statsPath, modelPath, inputPath, scoredPath string, threshold float64) {
	sch, err := schema.Load(statsPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", statsPath).Msg("feature stats load failed")
	}

	var clf ml.Classifier
	version := "demo"
	model, err := ml.LoadLogistic(modelPath, sch.Len())
	if err != nil {
		log.Warn().Err(err).Msg("model artifact unavailable, using demo classifier")
		clf = ml.DemoClassifier{}
	} else {
		clf = model
		version = model.Version()
	}

	in, err := os.Open(inputPath)
	if err != nil {
		log.Fatal().Err(err).Msg("input CSV open failed")
	}
	defer in.Close()

	out, err := os.Create(scoredPath)
	if err != nil {
		log.Fatal().Err(err).Msg("scored CSV create failed")
	}
	defer out.Close()

	session := scoring.NewSession(sch, clf, version, nil)
	summary, err := session.ScoreCSV(in, out, threshold)
	if err != nil {
		log.Fatal().Err(err).Msg("scoring failed")
	}

	fmt.Printf("Scored %d/%d rows (%d flagged, %d failed) -> %s\n",
		summary.Scored, summary.Rows, summary.Flagged, summary.Failed, scoredPath)
}

type evalParams struct {
	scoredPath string
	truthCol   string
	threshold  float64
	sweepList  string
	topK       int
	popRows    int
	popPos     int
	outputPath string
}

func evaluate(p evalParams) {
	records, err := eval.LoadScoredCSV(p.scoredPath, p.truthCol)
	if err != nil {
		log.Fatal().Err(err).Msg("scored CSV load failed")
	}

	positives := 0
	outcomes := make([]eval.Outcome, len(records))
	for i, r := range records {
		if r.Actual == 1 {
			positives++
		}
		label, err := scoring.Decide(r.Probability, p.threshold)
		if err != nil {
			log.Fatal().Err(err).Msg("decision failed")
		}
		outcomes[i] = eval.Outcome{Predicted: label, Actual: r.Actual}
	}

	confusion := eval.Confusion(outcomes)

	thresholds := eval.DefaultThresholds()
	if p.sweepList != "" {
		thresholds, err = parseThresholds(p.sweepList)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid sweep list")
		}
	}

	sweep, err := eval.Sweep(eval.AsScored(records), thresholds)
	if err != nil {
		log.Fatal().Err(err).Msg("threshold sweep failed")
	}

	results := &report.Results{
		DatasetPath: p.scoredPath,
		Rows:        len(records),
		Positives:   positives,
		Threshold:   p.threshold,
		Confusion:   confusion,
		Stats:       confusion.Stats(),
		Sweep:       sweep,
	}

	if p.topK > 0 {
		var res eval.TopKResult
		if p.popRows > 0 || p.popPos > 0 {
			res, err = eval.TopKWithPopulation(records, p.topK,
				eval.Population{Rows: p.popRows, Positives: p.popPos})
		} else {
			res, err = eval.TopK(records, p.topK)
		}
		if err != nil {
			log.Fatal().Err(err).Msg("top-K evaluation failed")
		}
		results.TopK = &res
	}

	reporter := report.NewReporter(results, p.outputPath)
	if err := reporter.GenerateReport(); err != nil {
		log.Fatal().Err(err).Msg("report generation failed")
	}
	reporter.PrintSummary()
}

func parseThresholds(list string) ([]float64, error) {
	parts := strings.Split(list, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("threshold %q is not numeric", part)
		}
		out = append(out, v)
	}
	return out, nil
}
