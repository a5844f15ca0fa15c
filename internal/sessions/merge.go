package sessions

import (
	"cmp"
	"slices"

	"github.com/vincentbai/browsetrace-sessions/internal/models"
)

// Merge groups events into sessions and returns them ordered by start_ts.
// Sessions that start at the same second are ordered by user id, which makes
// the result independent of input order. The input is left untouched.
func Merge(events []models.Event) []models.Session {
	if len(events) == 0 {
		return []models.Session{}
	}

	var sessions []models.Session
	for _, userEvents := range GroupByUser(events) {
		sessions = append(sessions, userSessions(userEvents)...)
	}
	SortSessions(sessions)
	return sessions
}

// userSessions builds every session of a single user's events.
func userSessions(userEvents []models.Event) []models.Session {
	runs := Split(SortByTimestamp(userEvents), SessionGap)
	out := make([]models.Session, 0, len(runs))
	for _, run := range runs {
		out = append(out, NewSession(run))
	}
	return out
}

// NewSession builds the session record for one non-empty, time-sorted,
// single-user run. It panics on an empty run.
func NewSession(run []models.Event) models.Session {
	if len(run) == 0 {
		panic("sessions: cannot build a session from an empty run")
	}

	meta := make(map[string]any)
	for _, event := range run {
		mergeInto(meta, event.Meta)
	}

	return models.Session{
		UserID:  run[0].UserID,
		StartTS: run[0].TS,
		EndTS:   run[len(run)-1].TS,
		Types:   CollectTypes(run),
		Meta:    meta,
	}
}

// SortSessions stably orders sessions by start_ts, then user id.
func SortSessions(sessions []models.Session) {
	slices.SortStableFunc(sessions, func(a, b models.Session) int {
		if c := cmp.Compare(a.StartTS, b.StartTS); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
}
