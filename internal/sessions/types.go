package sessions

import "github.com/vincentbai/browsetrace-sessions/internal/models"

// CollectTypes returns the distinct event types of run in order of first
// appearance. An event without a type contributes the empty label.
func CollectTypes(run []models.Event) []string {
	seen := make(map[string]struct{}, len(run))
	types := make([]string, 0, len(run))
	for _, event := range run {
		if _, ok := seen[event.Type]; ok {
			continue
		}
		seen[event.Type] = struct{}{}
		types = append(types, event.Type)
	}
	return types
}
