package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"go.uber.org/zap"

	"expensereview/internal/config"
	"expensereview/internal/expense"
	"expensereview/internal/features"
	"expensereview/internal/models"
	"expensereview/internal/pipeline"
	"expensereview/internal/rates"
	"expensereview/internal/segment"
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

	recordsPath := flag.String("records", cfg.Data.Records, "expense records CSV")
	ratesPath := flag.String("rates", cfg.Data.Rates, "exchange rates CSV")
	category := flag.String("category", "", "segment to analyze (default: largest)")
	algo := flag.String("algo", cfg.Algo, "algorithm: gb|rf|bagging|dt")
	estimators := flag.Int("estimators", 50, "ensemble size")
	maxDepth := flag.Int("max_depth", 2, "tree depth")
	lr := flag.Float64("lr", 0.1, "learning rate (gb)")
	points := flag.Int("points", 8, "learning curve points")
	outDir := flag.String("out", cfg.Data.OutDir, "artifact output directory")
	flag.Parse()

	records, loadDiags, err := expense.Load(*recordsPath)
	if err != nil {
		logger.Fatal("load records", zap.Error(err))
	}
	for _, d := range loadDiags {
		logger.Warn("diagnostic", zap.String("kind", string(d.Kind)),
			zap.String("record", d.RecordID),
			zap.String("message", d.Message))
	}
	table, err := rates.Load(*ratesPath, cfg.ReportingCurrency)
	if err != nil {
		logger.Fatal("load rates", zap.Error(err))
	}
	res, err := pipeline.Run(records, table, pipeline.Options{
		Cutoff: cfg.CutoffTime(),
		Scorer: cfg.ScorerOptions(),
	})
	if err != nil {
		logger.Fatal("pipeline run", zap.Error(err))
	}

	seg, err := pickSegment(records, table, cfg, *category)
	if err != nil {
		logger.Fatal("pick segment", zap.Error(err))
	}
	logger.Info("analyzing segment", zap.String("category", seg.Category), zap.Int("records", len(seg.Vectors)))

	if err := scoreHistogram(res, seg.Category, filepath.Join(*outDir, "score_hist.png")); err != nil {
		logger.Warn("score histogram", zap.Error(err))
	}

	sizes, trainAcc, testAcc := learningCurve(seg, cfg.Seed, cfg.TestFraction, *points, func() models.Model {
		return buildModel(*algo, *estimators, *maxDepth, *lr, cfg.Seed)
	})
	for i := range sizes {
		fmt.Printf("%s | size=%d | train=%.3f | test=%.3f\n", seg.Category, sizes[i], trainAcc[i], testAcc[i])
	}
	if err := writeCurveCSV(filepath.Join(*outDir, "learning_curve.csv"), sizes, trainAcc, testAcc); err != nil {
		logger.Warn("write curve csv", zap.Error(err))
	}
	if err := plotCurve(filepath.Join(*outDir, "learning_curve.png"), sizes, trainAcc, testAcc); err != nil {
		logger.Warn("plot curve", zap.Error(err))
	}
	logger.Info("analysis artifacts written", zap.String("dir", *outDir))
}

func pickSegment(records []expense.Record, table *rates.Table, cfg *config.Config, category string) (segment.Segment, error) {
	vecs, err := deriveAll(records, table, cfg)
	if err != nil {
		return segment.Segment{}, err
	}
	segs := segment.Partition(vecs)
	if len(segs) == 0 {
		return segment.Segment{}, fmt.Errorf("no segments in input")
	}
	if category == "" {
		best := segs[0]
		for _, s := range segs[1:] {
			if len(s.Vectors) > len(best.Vectors) {
				best = s
			}
		}
		return best, nil
	}
	for _, s := range segs {
		if s.Category == category {
			return s, nil
		}
	}
	return segment.Segment{}, fmt.Errorf("category %q not present", category)
}

func deriveAll(records []expense.Record, table *rates.Table, cfg *config.Config) ([]features.Vector, error) {
	normalized := make([]decimal.Decimal, len(records))
	for i, rec := range records {
		amt, err := table.Convert(rec.Amount, rec.Currency, rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("normalize record %s: %w", rec.ExpenseID, err)
		}
		normalized[i] = amt
	}
	deriver := features.NewDeriver(cfg.CutoffTime())
	vecs, _, err := deriver.Derive(records, normalized)
	return vecs, err
}

func learningCurve(seg segment.Segment, seed int64, testFraction float64, points int, newModel func() models.Model) ([]int, []float64, []float64) {
	n := len(seg.Vectors)
	X := make([][]float64, n)
	y := make([]int, n)
	for i, v := range seg.Vectors {
		X[i] = v.Values
		y[i] = v.Label
	}
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	cut := n - int(testFraction*float64(n))
	trX := make([][]float64, 0, cut)
	trY := make([]int, 0, cut)
	teX := make([][]float64, 0, n-cut)
	teY := make([]int, 0, n-cut)
	for i, j := range perm {
		if i < cut {
			trX = append(trX, X[j])
			trY = append(trY, y[j])
		} else {
			teX = append(teX, X[j])
			teY = append(teY, y[j])
		}
	}

	var sizes []int
	var trainAcc, testAcc []float64
	for i := 1; i <= points; i++ {
		s := int(math.Max(10, float64(i)/float64(points)*float64(len(trX))))
		if s > len(trX) {
			s = len(trX)
		}
		if len(sizes) > 0 && s == sizes[len(sizes)-1] {
			continue
		}
		mdl := newModel()
		if err := mdl.Fit(trX[:s], trY[:s]); err != nil {
			continue
		}
		sizes = append(sizes, s)
		trainAcc = append(trainAcc, accuracy(trY[:s], mdl.Predict(trX[:s])))
		testAcc = append(testAcc, accuracy(teY, mdl.Predict(teX)))
	}
	return sizes, trainAcc, testAcc
}

func buildModel(algo string, estimators, maxDepth int, lr float64, seed int64) models.Model {
	switch algo {
	case "rf":
		rf := models.NewRandomForest(seed)
		rf.NEstimators = estimators
		rf.MaxDepth = maxDepth
		return rf
	case "bagging":
		bg := models.NewBagging(seed)
		bg.NEstimators = estimators
		bg.MaxDepth = maxDepth
		return bg
	case "dt":
		dt := models.NewDecisionTree()
		dt.MaxDepth = maxDepth
		return dt
	default:
		gb := models.NewGradientBoosting()
		gb.NEstimators = estimators
		gb.MaxDepth = maxDepth
		gb.LearningRate = lr
		return gb
	}
}

func accuracy(y, p []int) float64 {
	if len(y) == 0 {
		return 0
	}
	c := 0
	for i := range y {
		if y[i] == p[i] {
			c++
		}
	}
	return float64(c) / float64(len(y))
}

func scoreHistogram(res *pipeline.Result, category, path string) error {
	vals := make(plotter.Values, 0)
	for _, row := range res.Rows {
		if row.Category == category {
			vals = append(vals, row.Score)
		}
	}
	if len(vals) == 0 {
		return fmt.Errorf("no scored rows for %q", category)
	}
	p := plot.New()
	p.Title.Text = "Score distribution: " + category
	p.X.Label.Text = "score"
	p.Y.Label.Text = "count"
	h, err := plotter.NewHist(vals, 20)
	if err != nil {
		return err
	}
	p.Add(h)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

func writeCurveCSV(path string, sizes []int, trainAcc, testAcc []float64) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"size", "train_acc", "test_acc"}); err != nil {
		return err
	}
	for i := range sizes {
		rec := []string{strconv.Itoa(sizes[i]), fmt.Sprintf("%.6f", trainAcc[i]), fmt.Sprintf("%.6f", testAcc[i])}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func plotCurve(path string, sizes []int, trainAcc, testAcc []float64) error {
	p := plot.New()
	p.Title.Text = "Learning curve"
	p.X.Label.Text = "training samples"
	p.Y.Label.Text = "accuracy"
	p.Y.Min = 0
	p.Y.Max = 1

	toXY := func(xs []int, ys []float64) plotter.XYs {
		pts := make(plotter.XYs, len(xs))
		for i := range xs {
			pts[i].X = float64(xs[i])
			pts[i].Y = ys[i]
		}
		return pts
	}
	if err := plotutil.AddLinePoints(p, "train", toXY(sizes, trainAcc), "test", toXY(sizes, testAcc)); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
