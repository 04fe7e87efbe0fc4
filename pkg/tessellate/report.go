package tessellate

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/nickblock/geoutils/pkg/geom"
	"github.com/samber/lo"
)

// Report collects per-kind failure counts for a batch. The first failure
// of each kind is logged with the offending feature name; later ones are
// only counted unless verbose logging is on.
type Report struct {
	Converted int
	Skipped   map[string]int
	// Examples holds the first failure message of each kind.
	Examples map[string]string

	logger  *log.Logger
	quiet   bool
	verbose bool
}

func newReport(logger *log.Logger, quiet, verbose bool) *Report {
	if logger == nil {
		logger = log.Default()
	}
	return &Report{
		Skipped:  make(map[string]int),
		Examples: make(map[string]string),
		logger:   logger,
		quiet:    quiet,
		verbose:  verbose,
	}
}

func (r *Report) record(name string, err error) {
	kind := geom.Kind(err)
	r.Skipped[kind]++
	first := r.Skipped[kind] == 1
	if first {
		r.Examples[kind] = fmt.Sprintf("%s: %v", name, err)
	}
	switch {
	case r.verbose:
		r.logger.Printf("warning: %s: %v", name, err)
	case first && !r.quiet:
		r.logger.Printf("warning: %s: %v (further %q failures are counted silently)", name, err, kind)
	}
}

// Failures returns the total number of recorded failures.
func (r *Report) Failures() int {
	return lo.Sum(lo.Values(r.Skipped))
}

// Summary returns the one line batch summary.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ways exported: %d", r.Converted)
	kinds := lo.Keys(r.Skipped)
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(&b, ", %s: %d", k, r.Skipped[k])
	}
	return b.String()
}

// Log writes the summary.
func (r *Report) Log() {
	r.logger.Println(r.Summary())
}
