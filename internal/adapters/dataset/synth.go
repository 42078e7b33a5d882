package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/okian/lifelines/internal/domain/model"
)

var (
	syllables = []string{"al", "be", "cor", "da", "el", "fio", "gar", "hel", "is", "jo", "ka", "lu",
		"mar", "ne", "or", "pa", "qui", "ra", "sol", "ta", "ul", "ve", "wil", "xe", "yo", "zen"}
	palette = []string{"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f", "#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac"}
	fields  = []string{"philosophy", "science", "art", "politics", "music", "literature", "exploration", "religion"}
)

// SynthesizeRows generates n deterministic raw rows for seed. Prominence is
// skewed so that few rows are highly prominent, which is what real
// biographical datasets look like. Births spread from 800 BC to 2000 with a
// denser recent past.
func SynthesizeRows(n int, seed int64) []RawRecord {
	rng := rand.New(rand.NewSource(seed))
	rows := make([]RawRecord, n)
	for i := range rows {
		birth := -800 + int(2800*math.Sqrt(rng.Float64()))
		name := synthName(rng)
		row := RawRecord{
			ID:          fmt.Sprintf("syn-%06d", i),
			Name:        name,
			BirthYear:   intPtr(birth),
			Prominence:  intPtr(int(math.Round(100 * math.Pow(rng.Float64(), 3)))),
			Color:       palette[rng.Intn(len(palette))],
			Description: fmt.Sprintf("%s, figure of %s", name, fields[rng.Intn(len(fields))]),
			Tags:        []string{fields[rng.Intn(len(fields))]},
		}
		// Recent births may still be alive.
		if birth < 1940 || rng.Intn(3) > 0 {
			death := birth + 20 + rng.Intn(75)
			if death <= 2025 {
				row.DeathYear = intPtr(death)
			}
		}
		rows[i] = row
	}
	return rows
}

// Synthesize returns SynthesizeRows validated into records.
func Synthesize(n int, seed int64) []model.Record {
	records, _ := Validate(SynthesizeRows(n, seed))
	return records
}

func synthName(rng *rand.Rand) string {
	part := func(k int) string {
		var b strings.Builder
		for j := 0; j < k; j++ {
			b.WriteString(syllables[rng.Intn(len(syllables))])
		}
		s := b.String()
		return strings.ToUpper(s[:1]) + s[1:]
	}
	return part(2+rng.Intn(2)) + " " + part(2+rng.Intn(2))
}
