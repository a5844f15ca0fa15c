package sessions

import "github.com/vincentbai/browsetrace-sessions/internal/models"

// GroupByUser partitions events by user id. Events keep their relative input
// order inside each group. A missing user id is grouped under "".
func GroupByUser(events []models.Event) map[string][]models.Event {
	groups := make(map[string][]models.Event)
	for _, event := range events {
		groups[event.UserID] = append(groups[event.UserID], event)
	}
	return groups
}
