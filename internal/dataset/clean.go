package dataset

import (
	"fmt"
	"math"
	"strings"
)

// CleanOptions holds the filter thresholds.
type CleanOptions struct {
	// TimingThreshold is the relative-speed index above which a respondent is
	// flagged as inattentive.
	TimingThreshold float64
}

// DefaultCleanOptions matches the documented analysis.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{TimingThreshold: 2.0}
}

// FilterStep records one exclusion filter's effect.
type FilterStep struct {
	Name      string `json:"name"`
	Removed   int    `json:"removed"`
	Remaining int    `json:"remaining"`
}

// CleanReport is the per-step exclusion accounting. The documented reference
// run starts at 1382 respondents and removes 9+44+4+7+11 = 75.
type CleanReport struct {
	Raw   int          `json:"raw"`
	Steps []FilterStep `json:"steps"`
	Final int          `json:"final"`
}

// TotalRemoved sums removals across all steps.
func (c *CleanReport) TotalRemoved() int {
	n := 0
	for _, s := range c.Steps {
		n += s.Removed
	}
	return n
}

func (c *CleanReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "raw respondents: %d\n", c.Raw)
	for _, s := range c.Steps {
		fmt.Fprintf(&b, "- %s: removed %d (remaining %d)\n", s.Name, s.Removed, s.Remaining)
	}
	fmt.Fprintf(&b, "analysis sample: %d (total excluded %d)\n", c.Final, c.TotalRemoved())
	return b.String()
}

// Clean applies the exclusion filters in the documented order and returns the
// cleaned data plus the per-step report. The input is not modified.
func Clean(d *Data, opt CleanOptions) (*Data, *CleanReport) {
	rep := &CleanReport{Raw: d.Len()}
	cur := d.Respondents

	apply := func(name string, keep func(r *Respondent) bool) {
		kept := cur[:0:0]
		for i := range cur {
			if keep(&cur[i]) {
				kept = append(kept, cur[i])
			}
		}
		rep.Steps = append(rep.Steps, FilterStep{
			Name:      name,
			Removed:   len(cur) - len(kept),
			Remaining: len(kept),
		})
		cur = kept
	}

	apply("all analysis variables missing", func(r *Respondent) bool {
		for _, v := range AnalysisVariables() {
			if _, ok := v.Get(r); ok {
				return true
			}
		}
		return false
	})
	apply("demographic field missing", func(r *Respondent) bool {
		return r.Gender != GenderMissing &&
			r.Age != AgeMissing &&
			!r.Education.IsMissing() &&
			!r.Income.IsMissing()
	})
	apply("gender other or age unparsable", func(r *Respondent) bool {
		return r.Gender != OtherGender && r.Age != AgeUnparsable
	})
	apply("timing anomaly", func(r *Respondent) bool {
		if math.IsNaN(r.TimingScore) {
			// No speed index was recorded. Paper respondents never have one
			// and stay in; an online respondent without one cannot be checked
			// for attentiveness and is dropped.
			return r.Channel != Online
		}
		return r.TimingScore <= opt.TimingThreshold
	})
	apply("paper channel without completion flag", func(r *Respondent) bool {
		return r.Channel != Paper || !r.Completed.IsMissing()
	})

	rep.Final = len(cur)
	out := &Data{Respondents: cur}
	return out, rep
}
