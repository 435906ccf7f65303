package panel

// MethodologyItem is one bullet of a methodology section. Term is empty for plain bullets.
type MethodologyItem struct {
	Term string
	Text string
}

// MethodologySection is one column of the methodology sheet.
type MethodologySection struct {
	Title string
	Class string
	Items []MethodologyItem
}

// Methodology is the help sheet opened from the page header.
type Methodology struct {
	Title      string
	Summary    string
	Sections   []MethodologySection
	Disclaimer string
}

// DefaultMethodology describes how the anomaly scores were produced and how to read them.
var DefaultMethodology = Methodology{
	Title:   "Analysis Methodology",
	Summary: "Technical foundations and interpretation guidelines for electoral integrity assessment",
	Sections: []MethodologySection{
		{
			Title: "Data Sources",
			Class: "method-sources",
			Items: []MethodologyItem{
				{Text: "COMELEC barangay-level results (May 2025) via web scraping"},
				{Text: "PSA official barangay shapefiles"},
				{Text: "Computed accessibility features"},
			},
		},
		{
			Title: "ML Computation",
			Class: "method-ml",
			Items: []MethodologyItem{
				{Term: "Feature Engineering", Text: "Derived spatial metrics and clusters including turnout rates, Moran’s I, and Getis-Ord Gi*."},
				{Term: "Accessibility Modeling", Text: "Predicted turnout based on infrastructure and accessibility."},
				{Term: "Anomaly Detection", Text: "Applied Isolation Forest and Local Outlier Factor (LOF) for multi-dimensional anomaly detection."},
				{Term: "Prioritization", Text: "Ranked barangays into 4 audit tiers (Critical, High, Medium, Low) by anomaly score."},
				{Term: "Validation", Text: "Multi-seed checks to ensure outlier stability."},
			},
		},
		{
			Title: "Interpretation",
			Class: "method-interpretation",
			Items: []MethodologyItem{
				{Term: "Anomaly Score", Text: "0-100 deviation index"},
				{Term: "Residual Sigma", Text: "Standard deviations from expected"},
				{Term: "Turnout Discrepancy", Text: "Actual turnout rate vs. predicted turnout rate"},
				{Term: "Extreme Z-score Deviations (|Z| > 3)", Text: "Statistical threshold flags"},
			},
		},
	},
	Disclaimer: "This analysis is for investigative research purposes only. Flagged anomalies represent " +
		"statistical deviations that warrant further investigation by appropriate authorities. Machine " +
		"learning models are tools for hypothesis generation and pattern identification, not deterministic " +
		"proof of irregularities. All interpretations must be considered within their full statistical " +
		"context and verified through official channels.",
}
