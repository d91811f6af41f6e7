package provider

import (
	"context"
	"fmt"
	"strings"
)

// Compile-time check that SimulatedAnalyzer implements Analyzer.
var _ Analyzer = (*SimulatedAnalyzer)(nil)

// SimulatedAnalyzer is the soft path taken when no vision credential is
// configured. It synthesizes a deterministic local report so the pipeline
// stays usable without any provider set up.
type SimulatedAnalyzer struct{}

// NewSimulatedAnalyzer creates the simulated analysis path.
func NewSimulatedAnalyzer() *SimulatedAnalyzer {
	return &SimulatedAnalyzer{}
}

// Label identifies the simulated analysis path.
func (s *SimulatedAnalyzer) Label() string {
	return "simulated"
}

// Analyze produces a local placeholder report from the request metadata.
func (s *SimulatedAnalyzer) Analyze(_ context.Context, req Request) (string, error) {
	var report strings.Builder
	report.WriteString("## Video Analysis (simulated)\n\n")
	report.WriteString("No vision provider is configured, so this report was generated locally from the video metadata.\n\n")
	fmt.Fprintf(&report, "- **File name**: %s\n", req.VideoName)
	fmt.Fprintf(&report, "- **File size**: %s\n", req.VideoSizeHuman)
	fmt.Fprintf(&report, "- **Frames extracted**: %d\n", len(req.Frames))
	fmt.Fprintf(&report, "- **Sampling interval**: %.0f seconds\n", req.IntervalSec)
	if req.Transcript != "" {
		fmt.Fprintf(&report, "\n**Audio transcript**: %s\n", req.Transcript)
	}
	report.WriteString("\nConfigure GEMINI_API_KEY (or COHERE_API_KEY with ANALYSIS_PROVIDER=cohere) to enable real analysis.")

	return report.String(), nil
}
