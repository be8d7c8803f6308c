// Package chart shapes analytics results into chart-data JSON consumed by the
// browser charting library.
package chart

// Chart types understood by the front end.
const (
	TypeLine     = "line"
	TypeBar      = "bar"
	TypeDoughnut = "doughnut"
	TypeMatrix   = "matrix"
)

// Palette used across analytics charts.
const (
	ColorPrimary   = "#2563eb"
	ColorSecondary = "#f97316"
	ColorAccent    = "#0ea5e9"
	ColorMuted     = "#cbd5f5"
	ColorPositive  = "#16a34a"
	ColorNegative  = "#dc2626"
	ColorWarning   = "#eab308"
)

var seriesColors = []string{ColorPrimary, ColorSecondary, ColorAccent, ColorPositive, ColorWarning, ColorNegative, "#7c3aed", "#0d9488"}

// Dataset is one series of a chart.
type Dataset struct {
	Label  string    `json:"label"`
	Data   []float64 `json:"data"`
	Type   string    `json:"type,omitempty"`
	Color  string    `json:"color,omitempty"`
	Colors []string  `json:"colors,omitempty"`
	Fill   string    `json:"fill,omitempty"`
	Dashed bool      `json:"dashed,omitempty"`
	Axis   string    `json:"axis,omitempty"`
}

// Matrix is a heatmap grid; Values[y][x] aligns with YLabels and XLabels.
// Missing cells are null.
type Matrix struct {
	XLabels []string     `json:"x_labels"`
	YLabels []string     `json:"y_labels"`
	Values  [][]*float64 `json:"values"`
}

// Chart is the payload handed to the browser.
type Chart struct {
	Type     string    `json:"type"`
	Title    string    `json:"title,omitempty"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
	Matrix   *Matrix   `json:"matrix,omitempty"`
}

func newChart(kind, title string, capacity int) Chart {
	return Chart{Type: kind, Title: title, Labels: make([]string, 0, capacity), Datasets: []Dataset{}}
}

func colorAt(i int) string {
	return seriesColors[i%len(seriesColors)]
}
