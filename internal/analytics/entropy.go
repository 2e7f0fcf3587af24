package analytics

import (
	"math"
	"sort"

	"github.com/valter-silva-au/ptt-tracker/pkg/models"
)

// entropyFullMark is the top of the normalized entropy scale.
const entropyFullMark = 100

// StatusEntropy computes the Shannon entropy of the status distribution in
// each group, normalized against log2 of the full status enumeration and
// scaled to 0-100. Every key of the grouping is reported; empty groups have
// entropy 0 and diversity 0. Diversity is the group's member count.
func StatusEntropy(topics []models.Topic, g Grouping) []models.EntropyMetric {
	groups := g.partition(topics)
	maxBits := math.Log2(float64(len(models.Statuses())))

	out := make([]models.EntropyMetric, 0, len(g.Keys))
	for _, key := range g.Keys {
		members := groups[key]
		if len(members) == 0 {
			out = append(out, models.EntropyMetric{Subject: key, FullMark: entropyFullMark})
			continue
		}
		normalized := StatusEntropyBits(members) / maxBits * entropyFullMark
		out = append(out, models.EntropyMetric{
			Subject:   key,
			Entropy:   roundTo(normalized, 1),
			Diversity: len(members),
			FullMark:  entropyFullMark,
		})
	}
	return out
}

// StatusEntropyBits returns the unnormalized Shannon entropy, in bits, of the
// status distribution across topics. An empty slice has entropy 0.
func StatusEntropyBits(topics []models.Topic) float64 {
	if len(topics) == 0 {
		return 0
	}
	counts := make(map[models.Status]int)
	for _, t := range topics {
		counts[t.Status]++
	}

	// Sum in a fixed order so repeated calls are bit-identical.
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)

	n := float64(len(topics))
	var h float64
	for _, s := range statuses {
		p := float64(counts[models.Status(s)]) / n
		h -= p * math.Log2(p)
	}
	if h < 0 {
		return 0
	}
	return h
}
