package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Attempt state constants. An attempt moves Questioning -> Scoring -> Settled
// and is never re-opened once settled.
const (
	AttemptStateQuestioning = "questioning"
	AttemptStateScoring     = "scoring"
	AttemptStateSettled     = "settled"
)

// StringList stores a list of strings as a JSON column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
}

// CompletionAttempt represents one user's claim of having performed a habit,
// together with the validation interview and its terminal scoring result.
type CompletionAttempt struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	HabitID              uint       `gorm:"not null;index" json:"habit_id"`
	UserID               uint       `gorm:"not null;index" json:"user_id"`
	State                string     `gorm:"size:20;not null;default:questioning;index" json:"state"`
	Questions            StringList `gorm:"type:jsonb" json:"questions"`
	Answers              StringList `gorm:"type:jsonb" json:"answers"` // sparse, "" until answered
	CurrentQuestionIndex int        `gorm:"default:0" json:"current_question_index"`
	Confidence           int        `gorm:"default:0" json:"confidence"`
	Reasoning            string     `gorm:"type:text" json:"reasoning"`
	IsValidated          bool       `gorm:"default:false" json:"is_validated"`
	XPAwarded            int        `gorm:"default:0" json:"xp_awarded"`
	CoinsAwarded         int        `gorm:"default:0" json:"coins_awarded"`
	StreakAfter          int        `gorm:"default:0" json:"streak_after"`
	StreakBroken         bool       `gorm:"default:false" json:"streak_broken"`
	LeveledUp            bool       `gorm:"default:false" json:"leveled_up"`
	NewBadges            StringList `gorm:"type:jsonb" json:"new_badges"`
	SettledAt            *time.Time `json:"settled_at"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// TableName specifies the table name for CompletionAttempt model.
func (CompletionAttempt) TableName() string {
	return "completion_attempts"
}

// QuestionCount returns the number of validation questions on the attempt.
func (a *CompletionAttempt) QuestionCount() int {
	return len(a.Questions)
}

// AnsweredCount returns the number of non-empty answers collected so far.
func (a *CompletionAttempt) AnsweredCount() int {
	count := 0
	for _, ans := range a.Answers {
		if ans != "" {
			count++
		}
	}
	return count
}

// AllAnswered reports whether every question has a non-empty answer.
func (a *CompletionAttempt) AllAnswered() bool {
	return a.QuestionCount() > 0 && a.AnsweredCount() == a.QuestionCount()
}

// IsSettled reports whether the attempt has reached its terminal state.
func (a *CompletionAttempt) IsSettled() bool {
	return a.State == AttemptStateSettled
}
