// Package analyzers lists the lore-lint analyzers.
package analyzers

import (
	"golang.org/x/tools/go/analysis"

	"github.com/ersonp/lore-timeline/tools/lore-lint/analyzers/hotparse"
	"github.com/ersonp/lore-timeline/tools/lore-lint/analyzers/loopcall"
)

// All returns all analyzers to run.
func All() []*analysis.Analyzer {
	return []*analysis.Analyzer{
		loopcall.Analyzer,
		hotparse.Analyzer,
	}
}
