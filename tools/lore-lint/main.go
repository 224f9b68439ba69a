// lore-lint checks lore-timeline code for calls that belong outside loops
// and sort comparators.
package main

import (
	"golang.org/x/tools/go/analysis/multichecker"

	"github.com/ersonp/lore-timeline/tools/lore-lint/analyzers"
)

func main() {
	multichecker.Main(analyzers.All()...)
}
