package dataset

import "fmt"

// Reverse flips a coded scale so that larger values mean stronger agreement or
// more of the behavior: x -> max+1-x on a 1..max scale. Applying it twice is
// the identity; missing stays missing.
func Reverse(s Scale, max int) Scale {
	if s.IsMissing() {
		return s
	}
	return Scale(max+1) - s
}

// zeroBase shifts a 1-based code block so the minimum category is 0.
func zeroBase(s Scale) Scale {
	if s.IsMissing() {
		return s
	}
	return s - 1
}

// Recode remaps all variable codings in place:
//
//   - reversed 1-5 agreement/usage scales flip to positive polarity (6-x)
//   - the 1-3 frequency tier flips (4-x)
//   - 1/2 binaries flip (3-x) so that after zero-basing 1 means yes
//   - the whole coded block shifts to a 0 minimum; age stays in years
//
// Recode refuses to run twice: double application would silently flip scales
// back and shift categories negative.
func Recode(d *Data) error {
	if d.recoded {
		return fmt.Errorf("recode: data already recoded")
	}
	for i := range d.Respondents {
		r := &d.Respondents[i]

		// Items worded negatively in the questionnaire.
		r.SelfHealth = Reverse(r.SelfHealth, 5)
		r.DietQuality = Reverse(r.DietQuality, 5)
		r.SleepQual = Reverse(r.SleepQual, 5)
		r.AlcoholFreq = Reverse(r.AlcoholFreq, 3)

		// 1=yes 2=no binaries.
		r.Smoker = Reverse(r.Smoker, 2)
		r.ChronicIll = Reverse(r.ChronicIll, 2)

		r.SelfHealth = zeroBase(r.SelfHealth)
		r.Exercise = zeroBase(r.Exercise)
		r.DietQuality = zeroBase(r.DietQuality)
		r.SleepQual = zeroBase(r.SleepQual)
		r.AlcoholFreq = zeroBase(r.AlcoholFreq)
		r.InfoSeeking = zeroBase(r.InfoSeeking)
		r.Smoker = zeroBase(r.Smoker)
		r.ChronicIll = zeroBase(r.ChronicIll)
		r.Education = zeroBase(r.Education)
		r.Income = zeroBase(r.Income)
	}
	d.recoded = true
	return nil
}
