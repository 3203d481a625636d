package dataset

import (
	"crypto/sha1"
	"fmt"
)

// Hash fingerprints the dataset for cache keying: sha1 over a stable
// serialization of every field that feeds the model. Two loads of the same
// raw file at the same pipeline stage hash identically.
func (d *Data) Hash() string {
	h := sha1.New()
	fmt.Fprintf(h, "n=%d recoded=%t\n", d.Len(), d.recoded)
	for i := range d.Respondents {
		r := &d.Respondents[i]
		fmt.Fprintf(h, "%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d|%d\n",
			r.ID, r.Gender, r.Age, r.Education, r.Income,
			r.SelfHealth, r.Exercise, r.DietQuality, r.SleepQual,
			r.AlcoholFreq, r.InfoSeeking, r.Smoker, r.ChronicIll)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
