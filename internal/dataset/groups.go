package dataset

import "fmt"

// AgeGroup is the coarse age band used for weighting strata.
type AgeGroup int8

const (
	AgeUpTo29 AgeGroup = iota
	Age30to49
	Age50to64
	Age65to84
	Age85Plus
)

func (a AgeGroup) String() string {
	switch a {
	case AgeUpTo29:
		return "<=29"
	case Age30to49:
		return "30-49"
	case Age50to64:
		return "50-64"
	case Age65to84:
		return "65-84"
	case Age85Plus:
		return ">=85"
	}
	return "invalid"
}

// AgeGroups lists all bands in order.
func AgeGroups() []AgeGroup {
	return []AgeGroup{AgeUpTo29, Age30to49, Age50to64, Age65to84, Age85Plus}
}

// AgeGroupOf partitions age in years into the five fixed bands. Total over all
// non-negative ages; negative ages (the missing sentinels) are an error.
func AgeGroupOf(age int) (AgeGroup, error) {
	switch {
	case age < 0:
		return 0, fmt.Errorf("age %d outside valid range", age)
	case age <= 29:
		return AgeUpTo29, nil
	case age <= 49:
		return Age30to49, nil
	case age <= 64:
		return Age50to64, nil
	case age <= 84:
		return Age65to84, nil
	default:
		return Age85Plus, nil
	}
}

// EducationGroup is the coarse education level shared by sample and census.
type EducationGroup int8

const (
	EduCompulsoryNotFinished EducationGroup = iota
	EduCompulsory
	EduUpperSecondary // apprenticeship, vocational and academic secondary collapsed
	EduBachelor
	EduMaster
	EduDoctorate
)

func (e EducationGroup) String() string {
	switch e {
	case EduCompulsoryNotFinished:
		return "no compulsory degree"
	case EduCompulsory:
		return "compulsory"
	case EduUpperSecondary:
		return "upper secondary"
	case EduBachelor:
		return "bachelor"
	case EduMaster:
		return "master"
	case EduDoctorate:
		return "doctorate"
	}
	return "invalid"
}

// EducationGroups lists all groups in order.
func EducationGroups() []EducationGroup {
	return []EducationGroup{
		EduCompulsoryNotFinished, EduCompulsory, EduUpperSecondary,
		EduBachelor, EduMaster, EduDoctorate,
	}
}

// educationLookup maps the 8-level questionnaire code (raw 1..8) to the six
// coarse groups. Codes 3, 4 and 5 (apprenticeship, vocational school, academic
// secondary) collapse into upper secondary.
var educationLookup = map[Scale]EducationGroup{
	1: EduCompulsoryNotFinished,
	2: EduCompulsory,
	3: EduUpperSecondary,
	4: EduUpperSecondary,
	5: EduUpperSecondary,
	6: EduBachelor,
	7: EduMaster,
	8: EduDoctorate,
}

// EducationGroupOf maps a raw education code to its group. Unknown codes are
// an error condition, not a silent default.
func EducationGroupOf(code Scale) (EducationGroup, error) {
	g, ok := educationLookup[code]
	if !ok {
		return 0, fmt.Errorf("unknown education code %d", code)
	}
	return g, nil
}

// DeriveGroups computes age and education group labels for every respondent.
// It must run after Clean (demographics complete) and before Recode (the
// lookup is defined on raw codes). Idempotent: a second call re-derives the
// identical labels.
func DeriveGroups(d *Data) error {
	if d.recoded {
		return fmt.Errorf("derive groups: data already recoded; groups are defined on raw codes")
	}
	for i := range d.Respondents {
		r := &d.Respondents[i]
		ag, err := AgeGroupOf(r.Age)
		if err != nil {
			return fmt.Errorf("respondent %d: %w", r.ID, err)
		}
		eg, err := EducationGroupOf(r.Education)
		if err != nil {
			return fmt.Errorf("respondent %d: %w", r.ID, err)
		}
		r.AgeGroup = ag
		r.EduGroup = eg
	}
	d.grouped = true
	return nil
}
