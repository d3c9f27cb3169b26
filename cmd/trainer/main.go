package main

import (
	"flag"
	"path/filepath"

	"go.uber.org/zap"

	"expensereview/internal/config"
	"expensereview/internal/data"
	"expensereview/internal/diag"
	"expensereview/internal/expense"
	"expensereview/internal/pipeline"
	"expensereview/internal/policy"
	"expensereview/internal/rates"
	"expensereview/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	regen := flag.Bool("regen", false, "generate synthetic records and rates before running")
	n := flag.Int("n", 20000, "number of synthetic records for -regen")
	recordsPath := flag.String("records", cfg.Data.Records, "expense records CSV")
	ratesPath := flag.String("rates", cfg.Data.Rates, "exchange rates CSV")
	outDir := flag.String("out", cfg.Data.OutDir, "artifact output directory")
	flag.Parse()

	analysisDate := cfg.AnalysisDate
	if analysisDate == "" {
		analysisDate = cfg.CutoffTime().Format("2006-01-02")
	}

	if *regen {
		logger.Info("generating synthetic dataset",
			zap.Int("n", *n),
			zap.String("records", *recordsPath),
			zap.String("rates", *ratesPath))
		if err := data.GenerateRecords(*n, cfg.Seed, analysisDate, *recordsPath); err != nil {
			logger.Fatal("generate records", zap.Error(err))
		}
		if err := data.GenerateRates(cfg.Seed, cfg.ReportingCurrency, analysisDate, *ratesPath); err != nil {
			logger.Fatal("generate rates", zap.Error(err))
		}
	}

	records, loadDiags, err := expense.Load(*recordsPath)
	if err != nil {
		logger.Fatal("load records", zap.Error(err))
	}
	table, err := rates.Load(*ratesPath, cfg.ReportingCurrency)
	if err != nil {
		logger.Fatal("load rates", zap.Error(err))
	}
	logger.Info("dataset loaded",
		zap.Int("records", len(records)),
		zap.Int("dropped", diag.Count(loadDiags, diag.DroppedRecord)),
		zap.String("reporting_currency", cfg.ReportingCurrency))

	res, err := pipeline.Run(records, table, pipeline.Options{
		Cutoff: cfg.CutoffTime(),
		Scorer: cfg.ScorerOptions(),
		Policy: policy.New(cfg.Cutoff.Default, cfg.Cutoff.PerCategory),
	})
	if err != nil {
		logger.Fatal("pipeline run", zap.Error(err))
	}
	res.Diagnostics = append(loadDiags, res.Diagnostics...)

	for _, seg := range res.Segments {
		logger.Info("segment trained",
			zap.String("category", seg.Category),
			zap.Int("records", seg.Records),
			zap.Int("positives", seg.Positives),
			zap.Bool("constant_fallback", seg.Constant),
			zap.Float64("cv_accuracy", seg.CVAccuracy),
			zap.String("accuracy", seg.Eval.Accuracy.String()),
			zap.String("precision", seg.Eval.Precision.String()),
			zap.String("recall", seg.Eval.Recall.String()),
			zap.String("f1", seg.Eval.F1.String()))
	}
	for _, d := range res.Diagnostics {
		logger.Warn("diagnostic", zap.String("kind", string(d.Kind)),
			zap.String("category", d.Category),
			zap.String("record", d.RecordID),
			zap.String("message", d.Message))
	}

	escalated := 0
	for _, row := range res.Rows {
		if row.Decision == policy.Escalate {
			escalated++
		}
	}
	logger.Info("decisions",
		zap.Int("total", len(res.Rows)),
		zap.Int("escalate", escalated),
		zap.Int("auto_approve", len(res.Rows)-escalated))

	scoredPath := filepath.Join(*outDir, "scored.csv")
	reportPath := filepath.Join(*outDir, "report.yaml")
	if err := pipeline.WriteRows(scoredPath, res.Rows); err != nil {
		logger.Fatal("write scored rows", zap.Error(err))
	}
	if err := res.WriteReport(reportPath); err != nil {
		logger.Fatal("write report", zap.Error(err))
	}
	if err := res.SaveModels(filepath.Join(*outDir, "models")); err != nil {
		logger.Fatal("save models", zap.Error(err))
	}
	logger.Info("artifacts written",
		zap.String("scored", scoredPath),
		zap.String("report", reportPath),
		zap.String("models", filepath.Join(*outDir, "models")))
}
