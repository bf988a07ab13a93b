// Package report renders a completed profiling run as a Markdown document,
// optionally converted to HTML. Chart rendering stays with the consumer;
// the report carries the tables and highlight bounds a renderer needs.
package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"timeprof/domain/profile"
	"timeprof/internal"
)

const (
	reportFile = "README.md"
	htmlFile   = "report.html"
)

// MarkdownReporter writes the run report into an output directory
type MarkdownReporter struct {
	outDir     string
	renderHTML bool
	log        *internal.Logger
}

// NewMarkdownReporter creates a reporter
func NewMarkdownReporter(outDir string, renderHTML bool, log *internal.Logger) *MarkdownReporter {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &MarkdownReporter{outDir: outDir, renderHTML: renderHTML, log: log}
}

// Write renders the run result to README.md (and report.html when enabled)
func (r *MarkdownReporter) Write(result *profile.RunResult) error {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	md := Render(result)
	path := filepath.Join(r.outDir, reportFile)
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	r.log.Info("report written: %s", path)

	if r.renderHTML {
		p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
		renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.CompletePage})
		html := markdown.ToHTML([]byte(md), p, renderer)
		htmlPath := filepath.Join(r.outDir, htmlFile)
		if err := os.WriteFile(htmlPath, html, 0o644); err != nil {
			return fmt.Errorf("failed to write HTML report: %w", err)
		}
		r.log.Info("report written: %s", htmlPath)
	}
	return nil
}

// Render produces the Markdown document for a run result
func Render(result *profile.RunResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Temporal data profile\n\n")
	fmt.Fprintf(&b, "Run `%s`, bucket width `%s`, temporal key `%s`.\n\n",
		result.Manifest.RunID, result.Manifest.Interval, result.Manifest.TemporalKey)
	if result.Table.Len() > 0 {
		fmt.Fprintf(&b, "%d time buckets from %s to %s.\n\n",
			result.Table.Len(),
			result.Table.Buckets[0].Format("2006-01-02 15:04"),
			result.Table.Buckets[result.Table.Len()-1].Format("2006-01-02 15:04"))
	}

	if section, ok := result.Section(profile.SectionOverview, ""); ok {
		fmt.Fprintf(&b, "## Overview\n\n")
		writeSectionTable(&b, section)
	}

	for _, meta := range result.Metadata {
		common, hasCommon := result.Section(profile.SectionCommon, meta.Column)
		numeric, hasNumeric := result.Section(profile.SectionNumeric, meta.Column)
		if !hasCommon && !hasNumeric {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", meta.Column)
		if meta.IsNumeric && meta.Dtype != nil {
			fmt.Fprintf(&b, "Numeric column (`%s`).\n\n", *meta.Dtype)
		}
		if hasCommon {
			writeSectionTable(&b, common)
		}
		if hasNumeric {
			fmt.Fprintf(&b, "### Numeric statistics\n\n")
			writeSectionTable(&b, numeric)
		}
	}

	return b.String()
}

func writeSectionTable(b *strings.Builder, section profile.Section) {
	fmt.Fprintf(b, "| Series | Mean ± Std | Range [Min, Max] | IQR [Q1, Q3] | Outliers IQR %% | Outliers Z-score %% | Highlight |\n")
	fmt.Fprintf(b, "|---|---|---|---|---|---|---|\n")
	for _, named := range section.Evals {
		e := named.Evaluation
		fmt.Fprintf(b, "| %s | %s ± %s | [%s, %s] | [%s, %s] | %.2f | %.2f | %s |\n",
			displayName(named.Name),
			num(e.Mean), num(e.Std),
			num(e.Min), num(e.Max),
			num(e.Q1), num(e.Q3),
			e.OutlierPctIQR, e.OutlierPctZScore,
			bounds(e.Highlight))
	}
	fmt.Fprintf(b, "\n")
}

// displayName strips the source-column prefix from an aggregated-table
// column so section rows read as the statistic name alone
func displayName(name string) string {
	if i := strings.LastIndex(name, "__"); i > 0 {
		return name[i+2:]
	}
	return strings.TrimPrefix(name, "__")
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4g", v)
}

func bounds(b *profile.Bounds) string {
	if b == nil {
		return "-"
	}
	return fmt.Sprintf("(%s, %s)", num(b.Lower), num(b.Upper))
}
