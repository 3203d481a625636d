// Package census builds the population joint distribution over
// gender x age group x education group from the statistics-office workbook.
// It is the target distribution the post-stratification weights are fitted to.
package census

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/statlab-vienna/surveygraph/internal/dataset"
)

// Stratum is one cell of the joint distribution.
type Stratum struct {
	Gender dataset.Gender
	Age    dataset.AgeGroup
	Edu    dataset.EducationGroup
}

func (s Stratum) String() string {
	return fmt.Sprintf("%s/%s/%s", s.Gender, s.Age, s.Edu)
}

// Joint holds population counts per stratum.
type Joint struct {
	Counts map[Stratum]float64
	Total  float64
}

// Share returns the population share of a stratum.
func (j *Joint) Share(s Stratum) float64 {
	if j.Total == 0 {
		return 0
	}
	return j.Counts[s] / j.Total
}

// GenderTotal sums population counts over one gender.
func (j *Joint) GenderTotal(g dataset.Gender) float64 {
	t := 0.0
	for s, c := range j.Counts {
		if s.Gender == g {
			t += c
		}
	}
	return t
}

// Row is one parsed line of the census sheet before folding.
type Row struct {
	Gender    string
	AgeGroup  string
	Education string
	Count     float64
}

var genderLabels = map[string]dataset.Gender{
	"male":   dataset.Male,
	"m":      dataset.Male,
	"männer": dataset.Male,
	"female": dataset.Female,
	"f":      dataset.Female,
	"frauen": dataset.Female,
}

var ageLabels = map[string]dataset.AgeGroup{
	"0-29":  dataset.AgeUpTo29,
	"<=29":  dataset.AgeUpTo29,
	"30-49": dataset.Age30to49,
	"50-64": dataset.Age50to64,
	"65-84": dataset.Age65to84,
	"85+":   dataset.Age85Plus,
	">=85":  dataset.Age85Plus,
}

// eduFold maps census education categories to the six sample groups. The
// census distinguishes short-cycle tertiary and post-secondary non-tertiary
// degrees; the questionnaire never asked about those, so both fold into upper
// secondary. Without the fold the sample and population marginals would not
// share the same categories and post-stratification would face empty cells.
var eduFold = map[string]dataset.EducationGroup{
	"no compulsory degree":        dataset.EduCompulsoryNotFinished,
	"compulsory":                  dataset.EduCompulsory,
	"apprenticeship":              dataset.EduUpperSecondary,
	"vocational school":           dataset.EduUpperSecondary,
	"academic secondary":          dataset.EduUpperSecondary,
	"post-secondary non-tertiary": dataset.EduUpperSecondary,
	"short-cycle tertiary":        dataset.EduUpperSecondary,
	"bachelor":                    dataset.EduBachelor,
	"master":                      dataset.EduMaster,
	"doctorate":                   dataset.EduDoctorate,
}

// BuildJoint folds parsed census rows into the joint distribution. Unknown
// labels are an error: a silently dropped census cell would bias every weight.
func BuildJoint(rows []Row) (*Joint, error) {
	j := &Joint{Counts: map[Stratum]float64{}}
	for i, r := range rows {
		g, ok := genderLabels[normalize(r.Gender)]
		if !ok {
			return nil, fmt.Errorf("census row %d: unknown gender label %q", i+1, r.Gender)
		}
		a, ok := ageLabels[normalize(r.AgeGroup)]
		if !ok {
			return nil, fmt.Errorf("census row %d: unknown age group %q", i+1, r.AgeGroup)
		}
		e, ok := eduFold[normalize(r.Education)]
		if !ok {
			return nil, fmt.Errorf("census row %d: unknown education category %q", i+1, r.Education)
		}
		if r.Count < 0 {
			return nil, fmt.Errorf("census row %d: negative count %g", i+1, r.Count)
		}
		j.Counts[Stratum{Gender: g, Age: a, Edu: e}] += r.Count
		j.Total += r.Count
	}
	if j.Total == 0 {
		return nil, fmt.Errorf("census table is empty")
	}
	return j, nil
}

// LoadJoint reads the stratified counts sheet from the workbook and builds the
// joint distribution. Expected columns: gender, age group, education, count;
// one header row.
func LoadJoint(file, sheet string) (*Joint, error) {
	rows, err := ReadSheet(file, sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("census sheet %q has no data rows", sheet)
	}
	parsed := make([]Row, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 4 {
			continue // trailing formatting rows
		}
		cnt, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("census sheet row %d: count %q: %w", i+2, row[3], err)
		}
		parsed = append(parsed, Row{
			Gender:    row[0],
			AgeGroup:  row[1],
			Education: row[2],
			Count:     cnt,
		})
	}
	return BuildJoint(parsed)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
