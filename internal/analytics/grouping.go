package analytics

import "github.com/valter-silva-au/ptt-tracker/pkg/models"

// Grouping partitions topics by a key. Keys fixes both the set of groups
// reported (including empty ones) and their output order.
type Grouping struct {
	Name string
	Keys []string
	Key  func(models.Topic) string
}

// ByDepartment groups topics by department, in declaration order.
func ByDepartment() Grouping {
	depts := models.Departments()
	keys := make([]string, len(depts))
	for i, d := range depts {
		keys[i] = string(d)
	}
	return Grouping{
		Name: "department",
		Keys: keys,
		Key:  func(t models.Topic) string { return string(t.Department) },
	}
}

// ByPriority groups topics by priority, most severe first.
func ByPriority() Grouping {
	prios := models.Priorities()
	keys := make([]string, len(prios))
	for i, p := range prios {
		keys[i] = string(p)
	}
	return Grouping{
		Name: "priority",
		Keys: keys,
		Key:  func(t models.Topic) string { return string(t.Priority) },
	}
}

// ByOwner groups topics by owner. Owners appear in first-seen order.
func ByOwner(topics []models.Topic) Grouping {
	seen := make(map[string]bool)
	var keys []string
	for _, t := range topics {
		if !seen[t.Owner] {
			seen[t.Owner] = true
			keys = append(keys, t.Owner)
		}
	}
	return Grouping{
		Name: "owner",
		Keys: keys,
		Key:  func(t models.Topic) string { return t.Owner },
	}
}

// partition buckets topics under the grouping's key function.
func (g Grouping) partition(topics []models.Topic) map[string][]models.Topic {
	groups := make(map[string][]models.Topic, len(g.Keys))
	for _, t := range topics {
		k := g.Key(t)
		groups[k] = append(groups[k], t)
	}
	return groups
}
