package model

import (
	"context"
	"strings"
	"testing"

	"github.com/statlab-vienna/surveygraph/internal/dataset"
)

// completed builds n recoded respondents with no missing values and enough
// variation in every column for the correlation matrix to be estimable.
func completed(t *testing.T, n int) *dataset.Data {
	t.Helper()
	rs := make([]dataset.Respondent, n)
	for i := 0; i < n; i++ {
		g := dataset.Male
		if i%2 == 1 {
			g = dataset.Female
		}
		rs[i] = dataset.Respondent{
			ID:          i + 1,
			Gender:      g,
			Age:         25 + (i*7)%60,
			Education:   dataset.Scale(1 + i%8),
			Income:      dataset.Scale(1 + i%5),
			SelfHealth:  dataset.Scale(1 + (i*3)%5),
			Exercise:    dataset.Scale(1 + (i/2)%5),
			DietQuality: dataset.Scale(1 + (i+2)%5),
			SleepQual:   dataset.Scale(1 + (i*2)%5),
			AlcoholFreq: dataset.Scale(1 + i%3),
			InfoSeeking: dataset.Scale(1 + (i+i/4)%5),
			Smoker:      dataset.Scale(1 + (i/5)%2),
			ChronicIll:  dataset.Scale(1 + (i/3)%2),
		}
	}
	d := &dataset.Data{Respondents: rs}
	if err := dataset.DeriveGroups(d); err != nil {
		t.Fatalf("derive groups: %v", err)
	}
	if err := dataset.Recode(d); err != nil {
		t.Fatalf("recode: %v", err)
	}
	return d
}

func TestCopulaFitShape(t *testing.T) {
	d := completed(t, 60)
	fit, err := Copula{Seed: 1}.Fit(context.Background(), d)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}

	p := len(fit.Variables)
	if p != len(dataset.Variables()) {
		t.Fatalf("fit over %d variables, want %d", p, len(dataset.Variables()))
	}
	for i := 0; i < p; i++ {
		if fit.Partial[i][i] != 0 {
			t.Errorf("diagonal (%d,%d) = %g, want 0", i, i, fit.Partial[i][i])
		}
		for j := 0; j < p; j++ {
			r := fit.Partial[i][j]
			if r < -1 || r > 1 {
				t.Errorf("partial (%d,%d) = %g outside [-1,1]", i, j, r)
			}
			if r != fit.Partial[j][i] {
				t.Errorf("partial matrix not symmetric at (%d,%d)", i, j)
			}
		}
	}
	for name, samples := range fit.Predictability {
		if len(samples) != 1 {
			t.Errorf("%s: %d predictability samples without posterior draws, want 1", name, len(samples))
		}
		for _, s := range samples {
			if s < 0 || s > 1 {
				t.Errorf("%s: predictability %g outside [0,1]", name, s)
			}
		}
	}
	if fit.Lower != nil || fit.Upper != nil {
		t.Errorf("intervals present without posterior draws")
	}
}

func TestCopulaPosteriorIntervals(t *testing.T) {
	d := completed(t, 60)
	fit, err := Copula{Seed: 3, PosteriorDraws: 10}.Fit(context.Background(), d)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	p := len(fit.Variables)
	if fit.Lower == nil || fit.Upper == nil {
		t.Fatalf("posterior draws requested but no intervals")
	}
	for i := 0; i < p; i++ {
		for j := i + 1; j < p; j++ {
			if fit.Lower[i][j] > fit.Upper[i][j] {
				t.Errorf("interval (%d,%d) inverted: [%g, %g]", i, j, fit.Lower[i][j], fit.Upper[i][j])
			}
			if fit.Lower[i][j] != fit.Lower[j][i] || fit.Upper[i][j] != fit.Upper[j][i] {
				t.Errorf("interval not symmetric at (%d,%d)", i, j)
			}
		}
	}
	for name, samples := range fit.Predictability {
		if len(samples) != 10 {
			t.Errorf("%s: %d predictability samples, want one per draw", name, len(samples))
		}
	}
}

func TestCopulaDeterministic(t *testing.T) {
	a, err := Copula{Seed: 9, PosteriorDraws: 5}.Fit(context.Background(), completed(t, 60))
	if err != nil {
		t.Fatalf("first fit: %v", err)
	}
	b, err := Copula{Seed: 9, PosteriorDraws: 5}.Fit(context.Background(), completed(t, 60))
	if err != nil {
		t.Fatalf("second fit: %v", err)
	}
	for i := range a.Partial {
		for j := range a.Partial[i] {
			if a.Partial[i][j] != b.Partial[i][j] || a.Lower[i][j] != b.Lower[i][j] {
				t.Fatalf("same seed, different fit at (%d,%d)", i, j)
			}
		}
	}
}

func TestCopulaRefusesIncompleteData(t *testing.T) {
	d := completed(t, 60)
	d.Respondents[4].Smoker = dataset.ScaleMissing
	_, err := Copula{}.Fit(context.Background(), d)
	if err == nil || !strings.Contains(err.Error(), "impute") {
		t.Fatalf("missing cell must abort the fit, got %v", err)
	}
}

func TestCopulaRefusesTinySamples(t *testing.T) {
	if _, err := (Copula{}).Fit(context.Background(), completed(t, 10)); err == nil {
		t.Errorf("fewer rows than variables must be an error")
	}
}
