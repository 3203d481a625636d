package describe

import (
	"math"
	"testing"

	"github.com/statlab-vienna/surveygraph/internal/census"
	"github.com/statlab-vienna/surveygraph/internal/dataset"
	"github.com/statlab-vienna/surveygraph/internal/weighting"
)

// prepared builds a small recoded, grouped sample. Raw smoker coding is
// 1=yes 2=no; after recoding 1 means yes.
func prepared(t *testing.T) *dataset.Data {
	t.Helper()
	mk := func(id int, g dataset.Gender, age int, smoker dataset.Scale) dataset.Respondent {
		return dataset.Respondent{
			ID: id, Gender: g, Age: age, Education: 3, Income: 2,
			SelfHealth: 3, Exercise: 3, DietQuality: 3, SleepQual: 3,
			AlcoholFreq: 2, InfoSeeking: 3, Smoker: smoker, ChronicIll: 2,
		}
	}
	d := &dataset.Data{Respondents: []dataset.Respondent{
		mk(1, dataset.Male, 35, 1),
		mk(2, dataset.Male, 70, 2),
		mk(3, dataset.Female, 50, 2),
		mk(4, dataset.Female, 60, 2),
	}}
	if err := dataset.DeriveGroups(d); err != nil {
		t.Fatalf("derive groups: %v", err)
	}
	if err := dataset.Recode(d); err != nil {
		t.Fatalf("recode: %v", err)
	}
	return d
}

func TestGroupMeansByGender(t *testing.T) {
	d := prepared(t)
	tbl, err := GroupMeans(d, ByGender, []string{"age"})
	if err != nil {
		t.Fatalf("group means: %v", err)
	}
	if len(tbl.Rows) != 2 || tbl.Rows[0] != "female" || tbl.Rows[1] != "male" {
		t.Fatalf("rows = %v, want [female male]", tbl.Rows)
	}
	if math.Abs(tbl.Values[0][0]-55) > 1e-9 {
		t.Errorf("female mean age = %g, want 55", tbl.Values[0][0])
	}
	if math.Abs(tbl.Values[1][0]-52.5) > 1e-9 {
		t.Errorf("male mean age = %g, want 52.5", tbl.Values[1][0])
	}
	if tbl.Weighted {
		t.Errorf("unweighted table flagged weighted")
	}
}

func TestContingencyRowsNormalized(t *testing.T) {
	d := prepared(t)

	tbl, err := Contingency(d, ByGender, "smoker", nil)
	if err != nil {
		t.Fatalf("contingency: %v", err)
	}
	for i, row := range tbl.Values {
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("row %s sums to %g, want 1", tbl.Rows[i], sum)
		}
	}
	// Males split evenly between smoker and non-smoker.
	male := tbl.Values[1]
	if math.Abs(male[0]-0.5) > 1e-12 || math.Abs(male[1]-0.5) > 1e-12 {
		t.Errorf("male smoker proportions = %v, want [0.5 0.5]", male)
	}

	// Upweight the young male stratum 3:1; the smoker share shifts with it.
	w := &weighting.Weights{ByStratum: map[census.Stratum]float64{
		{Gender: dataset.Male, Age: dataset.Age30to49, Edu: dataset.EduUpperSecondary}:   3,
		{Gender: dataset.Male, Age: dataset.Age65to84, Edu: dataset.EduUpperSecondary}:   1,
		{Gender: dataset.Female, Age: dataset.Age50to64, Edu: dataset.EduUpperSecondary}: 1,
	}}
	wt, err := Contingency(d, ByGender, "smoker", w)
	if err != nil {
		t.Fatalf("weighted contingency: %v", err)
	}
	if !wt.Weighted {
		t.Errorf("weighted table not flagged")
	}
	male = wt.Values[1]
	if math.Abs(male[0]-0.25) > 1e-12 || math.Abs(male[1]-0.75) > 1e-12 {
		t.Errorf("weighted male proportions = %v, want [0.25 0.75]", male)
	}
	sum := male[0] + male[1]
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("weighted row sums to %g, want 1", sum)
	}
}

func TestWeightedGroupMeans(t *testing.T) {
	d := prepared(t)
	w := &weighting.Weights{ByStratum: map[census.Stratum]float64{
		{Gender: dataset.Male, Age: dataset.Age30to49, Edu: dataset.EduUpperSecondary}:   3,
		{Gender: dataset.Male, Age: dataset.Age65to84, Edu: dataset.EduUpperSecondary}:   1,
		{Gender: dataset.Female, Age: dataset.Age50to64, Edu: dataset.EduUpperSecondary}: 1,
	}}
	tbl, err := WeightedGroupMeans(d, ByGender, []string{"age"}, w)
	if err != nil {
		t.Fatalf("weighted means: %v", err)
	}
	// Male: (3*35 + 1*70) / 4 = 43.75.
	if math.Abs(tbl.Values[1][0]-43.75) > 1e-9 {
		t.Errorf("weighted male mean age = %g, want 43.75", tbl.Values[1][0])
	}
	// Equal female weights leave the plain mean.
	if math.Abs(tbl.Values[0][0]-55) > 1e-9 {
		t.Errorf("weighted female mean age = %g, want 55", tbl.Values[0][0])
	}
}

func TestDescribeRefusesRawData(t *testing.T) {
	d := &dataset.Data{Respondents: []dataset.Respondent{{ID: 1, Gender: dataset.Male, Age: 35, Education: 3}}}
	if _, err := GroupMeans(d, ByGender, []string{"age"}); err == nil {
		t.Errorf("un-recoded data must be refused")
	}
	if _, err := Contingency(d, ByGender, "smoker", nil); err == nil {
		t.Errorf("un-recoded data must be refused")
	}
}

func TestDescribeUnknownInputs(t *testing.T) {
	d := prepared(t)
	if _, err := GroupMeans(d, Grouping("zodiac"), []string{"age"}); err == nil {
		t.Errorf("unknown grouping must be an error")
	}
	if _, err := Contingency(d, ByGender, "charisma", nil); err == nil {
		t.Errorf("unknown variable must be an error")
	}
}
