package analysis_test

import (
	"fmt"

	"github.com/matzehuels/componentscope/pkg/analysis"
)

func ExampleEstimate() {
	e := analysis.Estimate(14, analysis.DefaultMinutesPerComponent)
	fmt.Printf("%d components: %dh %dm\n", e.TotalComponents, e.Hours, e.Minutes)
	// Output: 14 components: 2h 20m
}
