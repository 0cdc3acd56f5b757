package complexity

import "fmt"

// Metrics represents code complexity measurements for a function.
type Metrics struct {
	Cyclomatic uint32 `json:"cyclomatic" toon:"cyclomatic"`
	Cognitive  uint32 `json:"cognitive" toon:"cognitive"`
	MaxNesting int    `json:"max_nesting" toon:"max_nesting"`
	Lines      int    `json:"lines" toon:"lines"`
}

// FunctionResult represents complexity metrics for a single function.
type FunctionResult struct {
	Name      string  `json:"name" toon:"name"`
	File      string  `json:"file" toon:"file"`
	StartLine uint32  `json:"start_line" toon:"start_line"`
	EndLine   uint32  `json:"end_line" toon:"end_line"`
	Method    bool    `json:"method,omitempty" toon:"method"`
	Nested    bool    `json:"nested,omitempty" toon:"nested"`
	HasError  bool    `json:"has_error,omitempty" toon:"has_error"`
	Metrics   Metrics `json:"metrics" toon:"metrics"`

	Violations []string `json:"violations,omitempty" toon:"violations"`
}

// FileResult represents aggregated complexity for a file.
type FileResult struct {
	Path            string           `json:"path" toon:"path"`
	Language        string           `json:"language" toon:"language"`
	HasError        bool             `json:"has_error,omitempty" toon:"has_error"`
	Functions       []FunctionResult `json:"functions" toon:"functions"`
	TotalCyclomatic uint32           `json:"total_cyclomatic" toon:"total_cyclomatic"`
	TotalCognitive  uint32           `json:"total_cognitive" toon:"total_cognitive"`
	AvgCyclomatic   float64          `json:"avg_cyclomatic" toon:"avg_cyclomatic"`
	AvgCognitive    float64          `json:"avg_cognitive" toon:"avg_cognitive"`
	MaxCyclomatic   uint32           `json:"max_cyclomatic" toon:"max_cyclomatic"`
	MaxCognitive    uint32           `json:"max_cognitive" toon:"max_cognitive"`
	ViolationCount  int              `json:"violation_count" toon:"violation_count"`
}

// Analysis represents the full analysis result.
type Analysis struct {
	Files   []FileResult `json:"files" toon:"files"`
	Summary Summary      `json:"summary" toon:"summary"`
}

// Summary provides aggregate statistics.
type Summary struct {
	TotalFiles     int     `json:"total_files" toon:"total_files"`
	TotalFunctions int     `json:"total_functions" toon:"total_functions"`
	AvgCyclomatic  float64 `json:"avg_cyclomatic" toon:"avg_cyclomatic"`
	AvgCognitive   float64 `json:"avg_cognitive" toon:"avg_cognitive"`
	MaxCyclomatic  uint32  `json:"max_cyclomatic" toon:"max_cyclomatic"`
	MaxCognitive   uint32  `json:"max_cognitive" toon:"max_cognitive"`
	P50Cyclomatic  uint32  `json:"p50_cyclomatic" toon:"p50_cyclomatic"`
	P90Cyclomatic  uint32  `json:"p90_cyclomatic" toon:"p90_cyclomatic"`
	P95Cyclomatic  uint32  `json:"p95_cyclomatic" toon:"p95_cyclomatic"`
	P50Cognitive   uint32  `json:"p50_cognitive" toon:"p50_cognitive"`
	P90Cognitive   uint32  `json:"p90_cognitive" toon:"p90_cognitive"`
	P95Cognitive   uint32  `json:"p95_cognitive" toon:"p95_cognitive"`
	ViolationCount int     `json:"violation_count" toon:"violation_count"`
	ErrorFunctions int     `json:"error_functions" toon:"error_functions"`
}

// Thresholds defines the limits for complexity violations. Zero disables a limit.
type Thresholds struct {
	MaxCyclomatic uint32 `json:"max_cyclomatic" toon:"max_cyclomatic"`
	MaxCognitive  uint32 `json:"max_cognitive" toon:"max_cognitive"`
	MaxNesting    int    `json:"max_nesting" toon:"max_nesting"`
}

// DefaultThresholds returns sensible defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxCyclomatic: 10,
		MaxCognitive:  15,
		MaxNesting:    4,
	}
}

// Check lists the limits m exceeds.
func (t Thresholds) Check(m Metrics) []string {
	var out []string
	if t.MaxCyclomatic > 0 && m.Cyclomatic > t.MaxCyclomatic {
		out = append(out, fmt.Sprintf("cyclomatic %d > %d", m.Cyclomatic, t.MaxCyclomatic))
	}
	if t.MaxCognitive > 0 && m.Cognitive > t.MaxCognitive {
		out = append(out, fmt.Sprintf("cognitive %d > %d", m.Cognitive, t.MaxCognitive))
	}
	if t.MaxNesting > 0 && m.MaxNesting > t.MaxNesting {
		out = append(out, fmt.Sprintf("nesting %d > %d", m.MaxNesting, t.MaxNesting))
	}
	return out
}

// IsSimple returns true if complexity is within acceptable limits.
func (m *Metrics) IsSimple(t Thresholds) bool {
	return m.Cyclomatic <= t.MaxCyclomatic &&
		m.Cognitive <= t.MaxCognitive &&
		m.MaxNesting <= t.MaxNesting
}

// NeedsRefactoring returns true if any metric is more than twice its limit.
func (m *Metrics) NeedsRefactoring(t Thresholds) bool {
	return m.Cyclomatic > t.MaxCyclomatic*2 ||
		m.Cognitive > t.MaxCognitive*2 ||
		m.MaxNesting > t.MaxNesting*2
}

// ComplexityScore is a weighted composite used to rank functions.
func (m *Metrics) ComplexityScore() float64 {
	return float64(m.Cyclomatic)*1.0 +
		float64(m.Cognitive)*1.2 +
		float64(m.MaxNesting)*2.0 +
		float64(m.Lines)*0.1
}
