package main

import (
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"expensereview/internal/pipeline"
	"expensereview/internal/policy"
	"expensereview/pkg/utils"
)

// The API serves a finished run's artifacts read-only: scored rows, segment
// evaluations and diagnostics. Scoring itself happens in the trainer.
type server struct {
	rows   []pipeline.Row
	report *pipeline.Report
}

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	artifacts := flag.String("artifacts", "out", "directory with trainer artifacts")
	flag.Parse()

	rows, err := pipeline.ReadRows(filepath.Join(*artifacts, "scored.csv"))
	if err != nil {
		logger.Fatal("load scored rows", zap.Error(err))
	}
	report, err := pipeline.ReadReport(filepath.Join(*artifacts, "report.yaml"))
	if err != nil {
		logger.Fatal("load report", zap.Error(err))
	}
	s := &server{rows: rows, report: report}
	logger.Info("artifacts loaded", zap.Int("rows", len(rows)), zap.Int("segments", len(report.Segments)))

	r := gin.Default()
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/")
	api.Use(apiKeyMiddleware)
	api.GET("/rows", s.handleRows)
	api.GET("/segments", s.handleSegments)
	api.GET("/diagnostics", s.handleDiagnostics)
	api.GET("/summary", s.handleSummary)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("serve", zap.Error(err))
	}
}

func apiKeyMiddleware(c *gin.Context) {
	key := os.Getenv("API_KEY")
	if key == "" {
		c.Next()
		return
	}
	if c.GetHeader("X-API-Key") != key {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (s *server) handleRows(c *gin.Context) {
	category := c.Query("category")
	decision := c.Query("decision")
	limit := 200
	if q := c.Query("limit"); q != "" {
		if v, err := strconv.Atoi(q); err == nil && v > 0 {
			limit = v
		}
	}

	items := make([]gin.H, 0, limit)
	for _, row := range s.rows {
		if len(items) >= limit {
			break
		}
		if category != "" && row.Category != category {
			continue
		}
		if decision != "" && string(row.Decision) != decision {
			continue
		}
		items = append(items, gin.H{
			"expense_id":        row.ExpenseID,
			"team_id":           row.TeamID,
			"category":          row.Category,
			"normalized_amount": row.NormalizedAmount,
			"label":             row.Label,
			"score":             row.Score,
			"decision":          row.Decision,
			"band":              band(row.Score),
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *server) handleSegments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"segments": s.report.Segments})
}

func (s *server) handleDiagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"diagnostics": s.report.Diagnostics})
}

func (s *server) handleSummary(c *gin.Context) {
	type agg struct {
		Total     int `json:"total"`
		Escalated int `json:"escalated"`
		Positives int `json:"positives"`
	}
	byCategory := map[string]*agg{}
	for _, row := range s.rows {
		a := byCategory[row.Category]
		if a == nil {
			a = &agg{}
			byCategory[row.Category] = a
		}
		a.Total++
		a.Positives += row.Label
		if row.Decision == policy.Escalate {
			a.Escalated++
		}
	}
	c.JSON(http.StatusOK, gin.H{"categories": byCategory, "rows": len(s.rows)})
}

func band(score float64) string {
	switch {
	case score >= 0.9:
		return "high"
	case score >= 0.7:
		return "medium"
	case score >= 0.5:
		return "low"
	default:
		return "minimal"
	}
}
