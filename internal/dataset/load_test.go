package dataset

import (
	"math"
	"strings"
	"testing"
)

const rawHeader = "id;channel;completed;duration_rel;gender;age;education;income;" +
	"self_health;exercise;diet_quality;sleep_quality;alcohol_freq;info_seeking;smoker;chronic_ill"

// Two metadata lines follow the header in the real export.
var rawMeta = []string{
	"ident;recruitment;paper done;speed index;sex;age in years;highest degree;household income;" +
		"q1;q2;q3;q4;q5;q6;q7;q8",
	";;;;1-3;;1-8;1-5;1-5;1-5;1-5;1-5;1-3;1-5;1-2;1-2",
}

func fixture(rows ...string) string {
	all := append([]string{rawHeader}, rawMeta...)
	all = append(all, rows...)
	return strings.Join(all, "\n")
}

func TestLoadCoercion(t *testing.T) {
	d, err := LoadReader(strings.NewReader(fixture(
		"1;1;;1,8;2;34;3;2;4;2;3;1;2;5;1;2",
		"2;2;1;;1;Sechzig;5;4;1;1;5;2;1;3;2;1",
		"3;1;;0.9;3;vierzig?;-9;-1;;;;;;;;",
	)), DefaultLoadOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if d.Len() != 3 {
		t.Fatalf("got %d rows, want 3", d.Len())
	}

	r := d.Respondents[0]
	if r.Gender != Female || r.Age != 34 || r.Channel != Online {
		t.Errorf("row 1 demographics wrong: %+v", r)
	}
	if r.TimingScore != 1.8 {
		t.Errorf("decimal comma not repaired: got %v", r.TimingScore)
	}
	if !r.Completed.IsMissing() {
		t.Errorf("empty completion flag should be missing")
	}

	r = d.Respondents[1]
	if r.Age != 60 {
		t.Errorf("free-text age correction: got %d, want 60", r.Age)
	}
	if !math.IsNaN(r.TimingScore) {
		t.Errorf("missing timing should be NaN, got %v", r.TimingScore)
	}
	if r.Channel != Paper || r.Completed != 1 {
		t.Errorf("paper channel flags wrong: %+v", r)
	}

	r = d.Respondents[2]
	if r.Gender != OtherGender {
		t.Errorf("gender code 3: got %v", r.Gender)
	}
	if r.Age != AgeUnparsable {
		t.Errorf("uncorrectable free text should be unparsable, got %d", r.Age)
	}
	if !r.Education.IsMissing() || !r.Income.IsMissing() {
		t.Errorf("sentinels should coerce to missing: %+v", r)
	}
	if !r.SelfHealth.IsMissing() {
		t.Errorf("empty scale should be missing")
	}
}

func TestLoadMissingColumn(t *testing.T) {
	_, err := LoadReader(strings.NewReader("id;gender\n1;2"), DefaultLoadOptions())
	if err == nil || !strings.Contains(err.Error(), "missing column") {
		t.Fatalf("want missing-column error, got %v", err)
	}
}
