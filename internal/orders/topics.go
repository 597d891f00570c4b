package orders

import "strings"

const (
	TopicDashboardUpdated = "pos.dashboard.updated"

	// RoomAmministrazione is the room the back-office joins for global notifications.
	RoomAmministrazione = "amministrazione"
)

// Partition key = room, so every update for one station keeps its order.
func PartitionKey(room string) []byte { return []byte(room) }

// CategoryFromHeading derives the dashboard category from a heading such as "Dashboard Cucina".
func CategoryFromHeading(heading string) string {
	return strings.TrimSpace(strings.Replace(heading, "Dashboard ", "", 1))
}
