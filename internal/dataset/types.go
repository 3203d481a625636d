// Package dataset holds the typed respondent model and the load/clean/recode
// pipeline for the raw questionnaire export. All coercion from the delimited
// text format happens once, in Load; downstream packages only ever see typed
// records.
package dataset

import (
	"fmt"
	"math"
)

// Scale is a categorical or ordinal survey code. Negative means missing.
type Scale int8

// ScaleMissing marks a sentinel or empty cell.
const ScaleMissing Scale = -1

// IsMissing reports whether the code carries no answer.
func (s Scale) IsMissing() bool { return s < 0 }

// Gender as coded in the questionnaire (1/2/3).
type Gender int8

const (
	GenderMissing Gender = 0
	Male          Gender = 1
	Female        Gender = 2
	OtherGender   Gender = 3
)

func (g Gender) String() string {
	switch g {
	case Male:
		return "male"
	case Female:
		return "female"
	case OtherGender:
		return "other"
	}
	return "missing"
}

// Channel is the recruitment channel (1=online panel, 2=paper).
type Channel int8

const (
	ChannelMissing Channel = 0
	Online         Channel = 1
	Paper          Channel = 2
)

// Age sentinels. Missing (empty/sentinel cell) and unparsable (free text
// outside the correction table) are distinct: the demographic-missing filter
// catches the former, the gender/age filter the latter.
const (
	AgeMissing    = -1
	AgeUnparsable = -2
)

// Respondent is one questionnaire row after coercion.
type Respondent struct {
	ID        int
	Channel   Channel
	Completed Scale // paper-channel completion flag, 1=yes 2=no
	// TimingScore is the relative completion-speed index; values well above 1
	// flag inattentive responding. NaN when the channel records no timings.
	TimingScore float64

	Gender    Gender
	Age       int // years; AgeMissing / AgeUnparsable sentinels
	Education Scale
	Income    Scale

	SelfHealth  Scale
	Exercise    Scale
	DietQuality Scale
	SleepQual   Scale
	AlcoholFreq Scale
	InfoSeeking Scale
	Smoker      Scale
	ChronicIll  Scale

	// Derived by DeriveGroups.
	AgeGroup AgeGroup
	EduGroup EducationGroup
}

// Data is an immutable-after-load set of respondents plus pipeline markers.
type Data struct {
	Respondents []Respondent

	recoded bool
	grouped bool
}

// Recoded reports whether Recode has been applied. Descriptive and model
// stages must refuse un-recoded input; mixing codings is a correctness bug.
func (d *Data) Recoded() bool { return d.recoded }

// Grouped reports whether DeriveGroups has been applied.
func (d *Data) Grouped() bool { return d.grouped }

// Len returns the number of respondents.
func (d *Data) Len() int { return len(d.Respondents) }

// Clone deep-copies the respondent slice so imputation draws and bootstrap
// subsets never alias the base data.
func (d *Data) Clone() *Data {
	rs := make([]Respondent, len(d.Respondents))
	copy(rs, d.Respondents)
	return &Data{Respondents: rs, recoded: d.recoded, grouped: d.grouped}
}

// Subset returns a new Data containing the rows at idx (repeats allowed).
func (d *Data) Subset(idx []int) *Data {
	rs := make([]Respondent, len(idx))
	for i, j := range idx {
		rs[i] = d.Respondents[j]
	}
	return &Data{Respondents: rs, recoded: d.recoded, grouped: d.grouped}
}

// VarKind classifies a model variable.
type VarKind int8

const (
	Continuous VarKind = iota
	Ordinal
	Binary
)

// Variable exposes one analysis column over respondents. Get returns the
// numeric value and whether it is observed; Set writes an imputed value back.
type Variable struct {
	Name string
	Kind VarKind
	Get  func(r *Respondent) (float64, bool)
	Set  func(r *Respondent, v float64)
}

func scaleVar(name string, kind VarKind, get func(r *Respondent) *Scale) Variable {
	return Variable{
		Name: name,
		Kind: kind,
		Get: func(r *Respondent) (float64, bool) {
			s := *get(r)
			if s.IsMissing() {
				return 0, false
			}
			return float64(s), true
		},
		Set: func(r *Respondent, v float64) {
			*get(r) = Scale(math.Round(v))
		},
	}
}

// Variables returns the model variable registry in fixed order: demographics
// first, then the health-behavior block. The order defines matrix columns
// everywhere downstream.
func Variables() []Variable {
	vars := []Variable{
		{
			Name: "age",
			Kind: Continuous,
			Get: func(r *Respondent) (float64, bool) {
				if r.Age < 0 {
					return 0, false
				}
				return float64(r.Age), true
			},
			Set: func(r *Respondent, v float64) { r.Age = int(math.Round(v)) },
		},
		{
			Name: "female",
			Kind: Binary,
			Get: func(r *Respondent) (float64, bool) {
				switch r.Gender {
				case Female:
					return 1, true
				case Male:
					return 0, true
				}
				return 0, false
			},
		},
		scaleVar("education", Ordinal, func(r *Respondent) *Scale { return &r.Education }),
		scaleVar("income", Ordinal, func(r *Respondent) *Scale { return &r.Income }),
	}
	return append(vars, AnalysisVariables()...)
}

// AnalysisVariables returns the health-behavior block: the variables the
// all-missing exclusion filter and the imputer operate on.
func AnalysisVariables() []Variable {
	return []Variable{
		scaleVar("self_health", Ordinal, func(r *Respondent) *Scale { return &r.SelfHealth }),
		scaleVar("exercise", Ordinal, func(r *Respondent) *Scale { return &r.Exercise }),
		scaleVar("diet_quality", Ordinal, func(r *Respondent) *Scale { return &r.DietQuality }),
		scaleVar("sleep_quality", Ordinal, func(r *Respondent) *Scale { return &r.SleepQual }),
		scaleVar("alcohol_freq", Ordinal, func(r *Respondent) *Scale { return &r.AlcoholFreq }),
		scaleVar("info_seeking", Ordinal, func(r *Respondent) *Scale { return &r.InfoSeeking }),
		scaleVar("smoker", Binary, func(r *Respondent) *Scale { return &r.Smoker }),
		scaleVar("chronic_ill", Binary, func(r *Respondent) *Scale { return &r.ChronicIll }),
	}
}

// VariableByName looks a registry entry up; error on unknown names so typos in
// table configs fail loudly.
func VariableByName(name string) (Variable, error) {
	for _, v := range Variables() {
		if v.Name == name {
			return v, nil
		}
	}
	return Variable{}, fmt.Errorf("unknown variable %q", name)
}
