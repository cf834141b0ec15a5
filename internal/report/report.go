package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/dataloom-cli/internal/analysis"
	"github.com/KaramelBytes/dataloom-cli/internal/cluster"
	"github.com/KaramelBytes/dataloom-cli/internal/dataset"
	"github.com/KaramelBytes/dataloom-cli/internal/utils"
)

// Image files the report references. Rendering them is left to chart
// tooling; the Markdown links stay stable either way.
const (
	ClusterChartFile = "cluster_distribution.png"
	HeatmapFile      = "correlation_heatmap.png"
)

// statOrder fixes the line order inside the numeric summary block.
var statOrder = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Writer renders the analysis report. The README lands in a directory
// named after the dataset file, created under OutDir.
type Writer struct {
	OutDir string
}

// Write renders README.md for the given analysis and returns the
// directory the report was written to.
func (w *Writer) Write(datasetPath string, sum *analysis.Summary, res *cluster.Result, narrative string) (string, error) {
	dir := filepath.Join(w.OutDir, reportName(datasetPath))
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	content := Render(datasetPath, sum, res, narrative)
	if err := utils.SafeWriteFile(filepath.Join(dir, "README.md"), []byte(content)); err != nil {
		return "", fmt.Errorf("write README.md: %w", err)
	}
	return dir, nil
}

// reportName strips the extension from the dataset file name. A name
// that vanishes entirely (e.g. ".csv") keeps the base name.
func reportName(datasetPath string) string {
	base := filepath.Base(datasetPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		name = base
	}
	return name
}

// Render produces the full README markdown. Sections appear in a fixed
// order regardless of how the analysis went.
func Render(datasetPath string, sum *analysis.Summary, res *cluster.Result, narrative string) string {
	var b strings.Builder

	b.WriteString("# Automated Dataset Analysis\n\n")

	b.WriteString("## Overview\n")
	fmt.Fprintf(&b, "This repository contains an analysis of the dataset **%s**. The following sections describe "+
		"the preprocessing steps, the analysis conducted, clustering results, visualizations, and insights derived from the data.\n\n", datasetPath)

	b.WriteString("## Dataset Summary\n")
	b.WriteString("The dataset consists of the following structure:\n\n")
	b.WriteString("### Data Overview\n")
	fmt.Fprintf(&b, "- Total Rows: %d\n", sum.TotalRows)
	fmt.Fprintf(&b, "- Total Columns: %d\n", sum.TotalColumns)
	b.WriteString("### Column Data Types\n")
	b.WriteString("```\n")
	for _, col := range sum.ColumnOrder {
		fmt.Fprintf(&b, "- %s: %s\n", col, sum.ColumnTypes[col])
	}
	b.WriteString("```\n")
	b.WriteString("### Missing Values\n")
	b.WriteString("```\n")
	for _, col := range sum.ColumnOrder {
		fmt.Fprintf(&b, "- %s: %d missing values\n", col, sum.MissingValues[col])
	}
	b.WriteString("```\n")

	b.WriteString("### Numeric Summary\n")
	b.WriteString("```\n")
	for _, col := range sum.ColumnOrder {
		stats, ok := sum.NumericSummary[col]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", col)
		for _, line := range statLines(stats) {
			b.WriteString(line)
		}
	}
	b.WriteString("```\n")

	b.WriteString("\n## Data Preprocessing\n")
	b.WriteString("Before performing any analysis, several preprocessing steps were conducted to clean and prepare the data:\n\n")
	b.WriteString("- **Missing Values Handling**: Missing values in categorical columns were replaced with 'Unknown'. Numeric columns had missing values imputed using the median.\n")
	b.WriteString("- **Date Parsing**: Any columns containing dates were parsed and converted into datetime objects.\n")
	b.WriteString("- **Standardization**: Numerical data was standardized to ensure that features are on the same scale before applying clustering algorithms.\n")

	b.WriteString("\n## Clustering Analysis\n")
	fmt.Fprintf(&b, "To uncover patterns in the data, we performed K-Means clustering on the dataset. The number of clusters was set to %d based on prior understanding.\n\n", len(res.Centers))
	b.WriteString("### Clustering Results\n")
	fmt.Fprintf(&b, "- **Cluster Centers**: %s\n", formatCenters(res.Centers))
	fmt.Fprintf(&b, "- **Inertia (Sum of Squared Distances)**: %s\n", dataset.FormatNumber(res.Inertia))
	b.WriteString("### Cluster Distribution\n")
	b.WriteString("The following plot shows the distribution of data points across the clusters:\n\n")
	fmt.Fprintf(&b, "![Cluster Distribution](%s)\n", ClusterChartFile)
	writeDistribution(&b, res)

	b.WriteString("\n## Visualizations\n")
	b.WriteString("The following visualizations help in understanding the data distribution and clustering results:\n\n")
	b.WriteString("### Correlation Heatmap\n")
	b.WriteString("This heatmap displays the correlation between the numerical features in the dataset.\n\n")
	fmt.Fprintf(&b, "![Correlation Heatmap](%s)\n", HeatmapFile)
	writeCorrelations(&b, sum.Correlations)

	b.WriteString("\n## Narrative Summary\n")
	b.WriteString("Below is the detailed narrative generated from the dataset analysis:\n\n")
	b.WriteString("### Insights\n")
	fmt.Fprintf(&b, "```\n%s\n```\n", narrative)

	b.WriteString("\n## Conclusion\n")
	b.WriteString("The analysis provides a deep understanding of the dataset. Key findings include:\n\n")
	b.WriteString("- The dataset has several missing values, which were appropriately handled during preprocessing.\n")
	fmt.Fprintf(&b, "- %d clusters were identified through K-Means clustering, which offer a meaningful segmentation of the data.\n", len(res.Centers))
	b.WriteString("- Visualizations helped in identifying relationships between variables and the distribution of data across clusters.\n\n")
	b.WriteString("Future improvements could involve experimenting with other clustering techniques or incorporating additional data sources.")

	return b.String()
}

func statLines(st analysis.NumericStats) []string {
	vals := map[string]string{
		"count": fmt.Sprintf("%d", st.Count),
		"mean":  dataset.FormatNumber(st.Mean),
		"std":   dataset.FormatNumber(st.Std),
		"min":   dataset.FormatNumber(st.Min),
		"25%":   dataset.FormatNumber(st.Q25),
		"50%":   dataset.FormatNumber(st.Median),
		"75%":   dataset.FormatNumber(st.Q75),
		"max":   dataset.FormatNumber(st.Max),
	}
	lines := make([]string, 0, len(statOrder))
	for _, name := range statOrder {
		lines = append(lines, fmt.Sprintf("- %s: %s\n", name, vals[name]))
	}
	return lines
}

// writeDistribution lists how many rows landed in each cluster.
func writeDistribution(b *strings.Builder, res *cluster.Result) {
	if len(res.Labels) == 0 {
		return
	}
	counts := make([]int, len(res.Centers))
	for _, l := range res.Labels {
		if l >= 0 && l < len(counts) {
			counts[l]++
		}
	}
	b.WriteString("\nCluster sizes:\n\n")
	for i, n := range counts {
		fmt.Fprintf(b, "- Cluster %d: %d rows\n", i, n)
	}
}

// writeCorrelations renders the Pearson matrix as a Markdown table so
// the numbers survive even without the rendered heatmap image.
func writeCorrelations(b *strings.Builder, corr *analysis.CorrMatrix) {
	if corr == nil {
		return
	}
	b.WriteString("\n|  |")
	for _, col := range corr.Columns {
		fmt.Fprintf(b, " %s |", col)
	}
	b.WriteString("\n|--|")
	for range corr.Columns {
		b.WriteString("--|")
	}
	b.WriteString("\n")
	for i, col := range corr.Columns {
		fmt.Fprintf(b, "| %s |", col)
		for j := range corr.Columns {
			fmt.Fprintf(b, " %.4f |", corr.Values[i][j])
		}
		b.WriteString("\n")
	}
}

func formatCenters(centers [][]float64) string {
	var b strings.Builder
	b.WriteString("[")
	for i, c := range centers {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("[")
		for j, v := range c {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%.4f", v)
		}
		b.WriteString("]")
	}
	b.WriteString("]")
	return b.String()
}
