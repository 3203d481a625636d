package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Sentinel codes the questionnaire export writes for unanswered items, in
// addition to plain empty cells.
var missingSentinels = map[string]bool{
	"":   true,
	"-9": true,
	"-1": true,
}

// ageCorrections is the finite table of literal free-text age answers seen in
// the raw export. Anything outside this table coerces to the unparsable
// sentinel rather than crashing the load.
var ageCorrections = map[string]int{
	"sechzig":        60,
	"einundsiebzig":  71,
	"49 jahre":       49,
	"über 80":        82,
	"fünfundvierzig": 45,
	"geb. 1958":      63,
}

// LoadOptions controls raw-file coercion.
type LoadOptions struct {
	// Delimiter for the export; the survey tool writes ';'.
	Delimiter rune
	// MetaRows is the number of metadata lines between the column header and
	// the first data row (question text, code labels).
	MetaRows int
}

// DefaultLoadOptions matches the documented export convention.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{Delimiter: ';', MetaRows: 2}
}

// Load reads the raw delimited export into typed respondent records. All
// coercion happens here: sentinel codes become missing, decimal commas are
// repaired on the timing column, and free-text ages go through the correction
// table.
func Load(path string, opt LoadOptions) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open raw data: %w", err)
	}
	defer f.Close()
	return LoadReader(f, opt)
}

// LoadReader is Load over an arbitrary reader (tests feed string fixtures).
func LoadReader(rd io.Reader, opt LoadOptions) (*Data, error) {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if opt.Delimiter != 0 {
		r.Comma = opt.Delimiter
	} else {
		r.Comma = ';'
	}

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	required := []string{
		"id", "channel", "completed", "duration_rel",
		"gender", "age", "education", "income",
		"self_health", "exercise", "diet_quality", "sleep_quality",
		"alcohol_freq", "info_seeking", "smoker", "chronic_ill",
	}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("raw data missing column %q", name)
		}
	}
	for i := 0; i < opt.MetaRows; i++ {
		if _, err := r.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				return &Data{}, nil
			}
			return nil, fmt.Errorf("skip metadata row %d: %w", i+1, err)
		}
	}

	d := &Data{}
	row := 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", row+1, err)
		}
		row++
		field := func(name string) string {
			i := col[name]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		resp := Respondent{
			ID:          parseInt(field("id"), row),
			Channel:     parseChannel(field("channel")),
			Completed:   parseScale(field("completed")),
			TimingScore: parseTiming(field("duration_rel")),
			Gender:      parseGender(field("gender")),
			Age:         parseAge(field("age")),
			Education:   parseScale(field("education")),
			Income:      parseScale(field("income")),
			SelfHealth:  parseScale(field("self_health")),
			Exercise:    parseScale(field("exercise")),
			DietQuality: parseScale(field("diet_quality")),
			SleepQual:   parseScale(field("sleep_quality")),
			AlcoholFreq: parseScale(field("alcohol_freq")),
			InfoSeeking: parseScale(field("info_seeking")),
			Smoker:      parseScale(field("smoker")),
			ChronicIll:  parseScale(field("chronic_ill")),
		}
		d.Respondents = append(d.Respondents, resp)
	}
	return d, nil
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseScale(s string) Scale {
	if missingSentinels[s] {
		return ScaleMissing
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return ScaleMissing
	}
	return Scale(n)
}

func parseGender(s string) Gender {
	switch s {
	case "1":
		return Male
	case "2":
		return Female
	case "3":
		return OtherGender
	}
	return GenderMissing
}

func parseChannel(s string) Channel {
	switch s {
	case "1":
		return Online
	case "2":
		return Paper
	}
	return ChannelMissing
}

// parseTiming repairs the locale decimal separator on the relative-speed
// column ("1,8" means 1.8) before parsing. Missing stays NaN.
func parseTiming(s string) float64 {
	if missingSentinels[s] {
		return math.NaN()
	}
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// parseAge coerces the free-text age field: plain integers, decimal-comma
// numbers, then the literal correction table. Anything else becomes the
// unparsable sentinel, never an error.
func parseAge(s string) int {
	if missingSentinels[s] {
		return AgeMissing
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return AgeMissing
		}
		return n
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64); err == nil && f >= 0 {
		return int(math.Round(f))
	}
	if n, ok := ageCorrections[strings.ToLower(s)]; ok {
		return n
	}
	return AgeUnparsable
}
