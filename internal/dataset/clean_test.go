package dataset

import (
	"math"
	"testing"
)

// validResp is a respondent that survives every exclusion filter.
func validResp(id int) Respondent {
	return Respondent{
		ID:          id,
		Channel:     Online,
		Completed:   1,
		TimingScore: 1.0,
		Gender:      Male,
		Age:         35,
		Education:   3,
		Income:      2,
		SelfHealth:  3,
		Exercise:    3,
		DietQuality: 3,
		SleepQual:   3,
		AlcoholFreq: 2,
		InfoSeeking: 3,
		Smoker:      2,
		ChronicIll:  2,
	}
}

func clearAnalysis(r *Respondent) {
	r.SelfHealth = ScaleMissing
	r.Exercise = ScaleMissing
	r.DietQuality = ScaleMissing
	r.SleepQual = ScaleMissing
	r.AlcoholFreq = ScaleMissing
	r.InfoSeeking = ScaleMissing
	r.Smoker = ScaleMissing
	r.ChronicIll = ScaleMissing
}

// TestCleanScenario feeds a synthetic 20-row table with known induced
// missingness and verifies each documented exclusion rule fires in order with
// the expected count.
func TestCleanScenario(t *testing.T) {
	var rs []Respondent
	id := 0
	add := func(mod func(r *Respondent)) {
		id++
		r := validResp(id)
		if mod != nil {
			mod(&r)
		}
		rs = append(rs, r)
	}

	for i := 0; i < 8; i++ {
		add(nil)
	}
	// Step 1: all analysis variables missing.
	for i := 0; i < 3; i++ {
		add(func(r *Respondent) { clearAnalysis(r) })
	}
	// Step 2: a demographic field missing.
	add(func(r *Respondent) { r.Education = ScaleMissing })
	add(func(r *Respondent) { r.Age = AgeMissing })
	// Step 3: gender "other" or unparsable age.
	add(func(r *Respondent) { r.Gender = OtherGender })
	add(func(r *Respondent) { r.Age = AgeUnparsable })
	// Step 4: timing anomalies.
	add(func(r *Respondent) { r.TimingScore = 3.5 })
	add(func(r *Respondent) { r.TimingScore = 2.1 })
	add(func(r *Respondent) { r.TimingScore = math.NaN() }) // online, unverifiable
	// Paper respondent without a speed index stays in.
	add(func(r *Respondent) {
		r.Channel = Paper
		r.TimingScore = math.NaN()
	})
	// Step 5: paper channel without completion flag.
	add(func(r *Respondent) {
		r.Channel = Paper
		r.TimingScore = math.NaN()
		r.Completed = ScaleMissing
	})

	d := &Data{Respondents: rs}
	if d.Len() != 20 {
		t.Fatalf("fixture has %d rows, want 20", d.Len())
	}

	cleaned, rep := Clean(d, DefaultCleanOptions())

	wantSteps := []struct {
		removed   int
		remaining int
	}{
		{3, 17}, // all analysis missing
		{2, 15}, // demographic missing
		{2, 13}, // gender/age
		{3, 10}, // timing
		{1, 9},  // channel consistency
	}
	if len(rep.Steps) != len(wantSteps) {
		t.Fatalf("got %d steps, want %d", len(rep.Steps), len(wantSteps))
	}
	for i, want := range wantSteps {
		got := rep.Steps[i]
		if got.Removed != want.removed || got.Remaining != want.remaining {
			t.Errorf("step %d (%s): removed %d remaining %d, want %d/%d",
				i+1, got.Name, got.Removed, got.Remaining, want.removed, want.remaining)
		}
	}
	if rep.Raw != 20 || rep.Final != 9 || rep.TotalRemoved() != 11 {
		t.Errorf("report totals wrong: %+v", rep)
	}
	if cleaned.Len() != 9 {
		t.Errorf("cleaned size %d, want 9", cleaned.Len())
	}
	// The compensating paper respondent must have survived.
	found := false
	for _, r := range cleaned.Respondents {
		if r.Channel == Paper && r.Completed == 1 {
			found = true
		}
	}
	if !found {
		t.Errorf("paper respondent with completion flag was dropped")
	}
	// Input untouched.
	if d.Len() != 20 {
		t.Errorf("Clean modified its input")
	}
}

func TestCleanFilterOrder(t *testing.T) {
	// A row that violates several rules is accounted to the first one.
	r := validResp(1)
	clearAnalysis(&r)
	r.Gender = OtherGender
	r.TimingScore = 9

	_, rep := Clean(&Data{Respondents: []Respondent{r}}, DefaultCleanOptions())
	if rep.Steps[0].Removed != 1 {
		t.Errorf("multi-violation row not removed by the first filter: %+v", rep.Steps)
	}
	for _, s := range rep.Steps[1:] {
		if s.Removed != 0 {
			t.Errorf("later filter %q double-counted the row", s.Name)
		}
	}
}
