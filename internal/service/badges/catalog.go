// Package badges awards one-time achievement badges from a declarative rule
// table evaluated after every settlement.
package badges

// Badge rarity constants.
const (
	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"
)

// Snapshot captures the aggregate state a badge predicate inspects. Two
// snapshots, taken before and after the settlement, let predicates detect
// the first crossing of a threshold.
type Snapshot struct {
	Level                int
	TotalXP              int
	TotalHabitsCompleted int
	EarlyBirdCount       int
	HabitStreak          int // current streak of the habit being settled
	WeekStreakHabits     int // active habits with streak >= 7
}

// Badge is a one-time achievement with a pure qualification predicate over
// the pre- and post-settlement snapshots.
type Badge struct {
	ID          string
	Name        string
	Description string
	Rarity      string
	Qualifies   func(before, after Snapshot) bool
}

// crossed reports the first crossing of threshold n: the counter was below
// it before the update and at or above it after. Unlike an equality check,
// this still fires when a counter jumps past the threshold in one update.
func crossed(before, after, n int) bool {
	return before < n && after >= n
}

// Catalog is the canonical badge rule table. It is the single source of
// truth; nothing else defines badge conditions.
var Catalog = []Badge{
	{
		ID:          "first_step",
		Name:        "First Step",
		Description: "Complete your first habit",
		Rarity:      RarityCommon,
		Qualifies: func(b, a Snapshot) bool {
			return crossed(b.TotalHabitsCompleted, a.TotalHabitsCompleted, 1)
		},
	},
	{
		ID:          "week_warrior",
		Name:        "Week Warrior",
		Description: "Reach a 7-day streak on a habit",
		Rarity:      RarityCommon,
		Qualifies: func(b, a Snapshot) bool {
			return crossed(b.HabitStreak, a.HabitStreak, 7)
		},
	},
	{
		ID:          "fortnight_focus",
		Name:        "Fortnight Focus",
		Description: "Reach a 14-day streak on a habit",
		Rarity:      RarityRare,
		Qualifies: func(b, a Snapshot) bool {
			return crossed(b.HabitStreak, a.HabitStreak, 14)
		},
	},
	{
		ID:          "month_master",
		Name:        "Month Master",
		Description: "Reach a 30-day streak on a habit",
		Rarity:      RarityEpic,
		Qualifies: func(b, a Snapshot) bool {
			return crossed(b.HabitStreak, a.HabitStreak, 30)
		},
	},
	{
		ID:          "halfway_hero",
		Name:        "Halfway Hero",
		Description: "Complete 50 habits in total",
		Rarity:      RarityRare,
		Qualifies: func(b, a Snapshot) bool {
			return crossed(b.TotalHabitsCompleted, a.TotalHabitsCompleted, 50)
		},
	},
	{
		ID:          "century_club",
		Name:        "Century Club",
		Description: "Complete 100 habits in total",
		Rarity:      RarityEpic,
		Qualifies: func(b, a Snapshot) bool {
			return crossed(b.TotalHabitsCompleted, a.TotalHabitsCompleted, 100)
		},
	},
	{
		ID:          "rising_star",
		Name:        "Rising Star",
		Description: "Reach level 10",
		Rarity:      RarityRare,
		Qualifies: func(b, a Snapshot) bool {
			return crossed(b.Level, a.Level, 10)
		},
	},
	{
		ID:          "seasoned_veteran",
		Name:        "Seasoned Veteran",
		Description: "Reach level 25",
		Rarity:      RarityEpic,
		Qualifies: func(b, a Snapshot) bool {
			return crossed(b.Level, a.Level, 25)
		},
	},
	{
		ID:          "early_bird",
		Name:        "Early Bird",
		Description: "Complete 10 habits before 8am",
		Rarity:      RarityRare,
		Qualifies: func(b, a Snapshot) bool {
			return crossed(b.EarlyBirdCount, a.EarlyBirdCount, 10)
		},
	},
	{
		ID:          "habit_collector",
		Name:        "Habit Collector",
		Description: "Hold 3 active habits with week-long streaks at once",
		Rarity:      RarityLegendary,
		Qualifies: func(b, a Snapshot) bool {
			return crossed(b.WeekStreakHabits, a.WeekStreakHabits, 3)
		},
	},
}

// ByID returns the catalog badge with the given id, or nil.
func ByID(id string) *Badge {
	for i := range Catalog {
		if Catalog[i].ID == id {
			return &Catalog[i]
		}
	}
	return nil
}
