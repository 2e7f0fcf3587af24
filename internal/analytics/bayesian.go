package analytics

import "github.com/valter-silva-au/ptt-tracker/pkg/models"

// BayesianConfidence estimates each group's delivery confidence with a
// Beta-Binomial model under a uniform Beta(1,1) prior. Probability is the
// posterior mean as a percentage (one decimal); variance is the posterior
// variance times 100 (two decimals). Empty groups report 0 for both.
func BayesianConfidence(topics []models.Topic, g Grouping) []models.BayesianConfidence {
	groups := g.partition(topics)

	out := make([]models.BayesianConfidence, 0, len(g.Keys))
	for _, key := range g.Keys {
		members := groups[key]
		if len(members) == 0 {
			out = append(out, models.BayesianConfidence{Name: key})
			continue
		}
		resolved := 0
		for _, t := range members {
			if t.Status == models.StatusResolved {
				resolved++
			}
		}
		mean, variance := betaPosterior(resolved, len(members))
		out = append(out, models.BayesianConfidence{
			Name:        key,
			Probability: roundTo(mean*100, 1),
			Variance:    roundTo(variance*100, 2),
		})
	}
	return out
}

// betaPosterior returns the mean and variance of Beta(1+r, 1+n-r).
func betaPosterior(resolved, total int) (mean, variance float64) {
	alpha := float64(1 + resolved)
	beta := float64(1 + total - resolved)
	sum := alpha + beta
	mean = alpha / sum
	variance = (alpha * beta) / (sum * sum * (sum + 1))
	return mean, variance
}
