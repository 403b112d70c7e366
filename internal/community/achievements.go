package community

// Achievement describes one earnable badge.
type Achievement struct {
	Code      string
	Title     string
	Threshold int64
}

// Planting achievements trigger on the number of trees credited to a user;
// scanning achievements on recorded scan events. Thresholds are cumulative,
// so a bulk import can unlock several at once.
var (
	plantingAchievements = []Achievement{
		{Code: "first-tree", Title: "First Tree", Threshold: 1},
		{Code: "ten-trees", Title: "Ten Trees", Threshold: 10},
		{Code: "fifty-trees", Title: "Fifty Trees", Threshold: 50},
		{Code: "hundred-trees", Title: "Hundred Trees", Threshold: 100},
	}
	scanningAchievements = []Achievement{
		{Code: "first-scan", Title: "First Scan", Threshold: 1},
	}
)

// Catalog returns every defined achievement, planting badges first.
func Catalog() []Achievement {
	out := make([]Achievement, 0, len(plantingAchievements)+len(scanningAchievements))
	out = append(out, plantingAchievements...)
	out = append(out, scanningAchievements...)
	return out
}

// AchievementByCode returns the catalog entry for a stored award code.
func AchievementByCode(code string) (Achievement, bool) {
	for _, a := range Catalog() {
		if a.Code == code {
			return a, true
		}
	}
	return Achievement{}, false
}
