package domain

import (
	"errors"
	"math"
	"time"
)

var ErrUserNotFound = errors.New("user not found")

// MacroTally is a user's accumulated nutrition for one calendar day.
type MacroTally struct {
	Calories int64     `json:"calories" dynamodbav:"calories"`
	Protein  int64     `json:"protein" dynamodbav:"protein"`
	Fat      int64     `json:"fat" dynamodbav:"fat"`
	Carbs    int64     `json:"carbs" dynamodbav:"carbs"`
	Date     time.Time `json:"date" dynamodbav:"date"`
}

type MacroUpdate struct {
	UserID   string
	Calories int64
	Protein  int64
	Fat      int64
	Carbs    int64
}

type MacroResponse struct {
	Macros MacroTally `json:"macros"`
}

// SameDay reports whether a and b fall on the same year/month/day once both
// are expressed in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Apply returns the tally after recording u at now. Within the same day the
// values are summed and the stored date is kept; otherwise the tally starts
// over from u dated now. A sum that does not fit in an int64 is reported as
// a *ValidationError naming each offending field.
func (t MacroTally) Apply(u MacroUpdate, now time.Time, loc *time.Location) (MacroTally, error) {
	if t.Date.IsZero() || !SameDay(t.Date, now, loc) {
		return MacroTally{
			Calories: u.Calories,
			Protein:  u.Protein,
			Fat:      u.Fat,
			Carbs:    u.Carbs,
			Date:     now,
		}, nil
	}

	var errs []FieldError
	add := func(field string, a, b int64) int64 {
		if a > 0 && b > math.MaxInt64-a {
			errs = append(errs, FieldError{Field: field, Reason: ReasonOverflow})
			return 0
		}
		return a + b
	}
	next := MacroTally{
		Calories: add("calories", t.Calories, u.Calories),
		Fat:      add("fat", t.Fat, u.Fat),
		Protein:  add("protein", t.Protein, u.Protein),
		Carbs:    add("carbs", t.Carbs, u.Carbs),
		Date:     t.Date,
	}
	if len(errs) > 0 {
		return t, &ValidationError{Errors: errs}
	}
	return next, nil
}
