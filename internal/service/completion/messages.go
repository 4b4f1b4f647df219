package completion

// Encouragement message pools for the reward summary. Selection is keyed on
// the attempt id so a re-fetched summary shows the same message.
var validatedMessages = []string{
	"Great work! Keep the momentum going.",
	"Another one in the books. Your consistency is paying off.",
	"Nice! Habits are built one day at a time.",
	"Validated and rewarded. See you tomorrow!",
	"That's how streaks are made. Well done.",
}

var consolationMessages = []string{
	"We couldn't verify this one, but showing up still counts.",
	"Not validated this time. Try adding more detail tomorrow.",
	"Close, but the answers didn't convince us. Keep at it!",
	"No streak credit today, but don't let that stop you.",
}

var streakBrokenSuffix = " Your streak reset, but today is a fresh start."

// encouragementFor picks a deterministic message for the attempt.
func encouragementFor(attemptID uint, validated, streakBroken bool) string {
	pool := consolationMessages
	if validated {
		pool = validatedMessages
	}
	msg := pool[int(attemptID)%len(pool)]
	if validated && streakBroken {
		msg += streakBrokenSuffix
	}
	return msg
}
