// Package badges evaluates a fixed achievement catalog against a
// user's activity count. Earned status is never persisted; it is
// recomputed on every read, so threshold changes take effect
// retroactively.
package badges

import "sort"

// Badge is one achievement in the catalog, unlocked at a completed-task
// threshold.
type Badge struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	Rarity    string `json:"rarity"`
	Threshold int    `json:"threshold"`
}

// Rarity tiers, lowest to highest.
const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Catalog is the fixed badge set. Order matters: earned badges are
// presented in this order.
var Catalog = []Badge{
	{ID: "starter", Name: "First Step", Icon: "🚀", Rarity: RarityCommon, Threshold: 1},
	{ID: "social", Name: "Social Butterfly", Icon: "🦋", Rarity: RarityCommon, Threshold: 5},
	{ID: "first-ten", Name: "First Ten Tasks", Icon: "👍", Rarity: RarityRare, Threshold: 10},
	{ID: "community", Name: "Community Contributor", Icon: "🗣️", Rarity: RarityRare, Threshold: 20},
	{ID: "quarter", Name: "Quarter Century", Icon: "🌟", Rarity: RarityEpic, Threshold: 25},
	{ID: "art", Name: "Art Virtuoso", Icon: "🎨", Rarity: RarityEpic, Threshold: 30},
	{ID: "half-century", Name: "Half Century", Icon: "👑", Rarity: RarityLegendary, Threshold: 50},
	{ID: "master", Name: "Master Finisher", Icon: "🏆", Rarity: RarityLegendary, Threshold: 100},
}

// Evaluation is one badge with its earned status and progress for a
// given activity count.
type Evaluation struct {
	Badge
	Earned          bool `json:"earned"`
	ProgressPercent int  `json:"progress_percent"`
}

// Evaluate scores every badge in the catalog against activityCount.
// Output ordering: earned badges first in catalog order, then unearned
// badges by ascending threshold, so the next unlockable badge leads the
// locked section.
func Evaluate(activityCount int, catalog []Badge) []Evaluation {
	if activityCount < 0 {
		activityCount = 0
	}

	var earned, unearned []Evaluation
	for _, b := range catalog {
		ev := Evaluation{
			Badge:           b,
			Earned:          activityCount >= b.Threshold,
			ProgressPercent: progress(activityCount, b.Threshold),
		}
		if ev.Earned {
			earned = append(earned, ev)
		} else {
			unearned = append(unearned, ev)
		}
	}

	sort.SliceStable(unearned, func(i, j int) bool {
		return unearned[i].Threshold < unearned[j].Threshold
	})
	return append(earned, unearned...)
}

// CollectionPercent is how much of the catalog the user has earned, as
// a whole percentage.
func CollectionPercent(activityCount int, catalog []Badge) int {
	if len(catalog) == 0 {
		return 0
	}
	earned := 0
	for _, b := range catalog {
		if activityCount >= b.Threshold {
			earned++
		}
	}
	return earned * 100 / len(catalog)
}

func progress(count, threshold int) int {
	if threshold <= 0 {
		return 100
	}
	p := count * 100 / threshold
	if p > 100 {
		p = 100
	}
	return p
}
