package dataset

import "testing"

func TestReverseInvolution(t *testing.T) {
	for _, max := range []int{2, 3, 5} {
		for s := Scale(1); s <= Scale(max); s++ {
			if got := Reverse(Reverse(s, max), max); got != s {
				t.Errorf("Reverse twice on %d (max %d) = %d, want identity", s, max, got)
			}
		}
	}
	if !Reverse(ScaleMissing, 5).IsMissing() {
		t.Errorf("Reverse must keep missing missing")
	}
}

func TestRecodeMappings(t *testing.T) {
	r := validResp(1)
	r.SelfHealth = 1  // worst on the reversed wording
	r.Exercise = 2    // already positively worded
	r.AlcoholFreq = 1 // reversed 1-3 tier
	r.Smoker = 1      // 1=yes
	r.ChronicIll = 2  // 2=no
	r.Education = 3
	r.Income = 5
	r.Age = 42

	d := &Data{Respondents: []Respondent{r}}
	if err := Recode(d); err != nil {
		t.Fatalf("recode: %v", err)
	}
	got := d.Respondents[0]

	if got.SelfHealth != 4 {
		t.Errorf("SelfHealth: got %d, want 4 (reversed then zero-based)", got.SelfHealth)
	}
	if got.Exercise != 1 {
		t.Errorf("Exercise: got %d, want 1 (zero-based only)", got.Exercise)
	}
	if got.AlcoholFreq != 2 {
		t.Errorf("AlcoholFreq: got %d, want 2", got.AlcoholFreq)
	}
	if got.Smoker != 1 {
		t.Errorf("Smoker yes: got %d, want 1", got.Smoker)
	}
	if got.ChronicIll != 0 {
		t.Errorf("ChronicIll no: got %d, want 0", got.ChronicIll)
	}
	if got.Education != 2 || got.Income != 4 {
		t.Errorf("demographic block not zero-based: edu %d income %d", got.Education, got.Income)
	}
	if got.Age != 42 {
		t.Errorf("age must stay in years, got %d", got.Age)
	}
	if !d.Recoded() {
		t.Errorf("recoded marker not set")
	}
}

func TestRecodeMissingStaysMissing(t *testing.T) {
	r := validResp(1)
	r.SelfHealth = ScaleMissing
	r.Smoker = ScaleMissing
	d := &Data{Respondents: []Respondent{r}}
	if err := Recode(d); err != nil {
		t.Fatalf("recode: %v", err)
	}
	if !d.Respondents[0].SelfHealth.IsMissing() || !d.Respondents[0].Smoker.IsMissing() {
		t.Errorf("recode must not invent values for missing cells")
	}
}

func TestRecodeRefusesDoubleApplication(t *testing.T) {
	d := &Data{Respondents: []Respondent{validResp(1)}}
	if err := Recode(d); err != nil {
		t.Fatalf("first recode: %v", err)
	}
	if err := Recode(d); err == nil {
		t.Errorf("second recode must fail; mixing codings is a correctness bug")
	}
}
