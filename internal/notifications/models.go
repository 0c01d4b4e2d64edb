package notifications

import (
	"encoding/json"
	"time"
)

// Build event types published to Kafka after seatmap build activity.
const (
	EventStepCompleted   = "step_completed"
	EventCrawlFinished   = "crawl_finished"
	EventCooldownEntered = "cooldown_entered"
)

// BuildEvent describes one seatmap build lifecycle transition for a venue.
// Consumers use these for dashboards and alerting on stuck or throttled
// crawls; the build pipeline itself never depends on them.
type BuildEvent struct {
	Type       string    `json:"type"`
	VenueID    string    `json:"venue_id"`
	Pages      int       `json:"pages"`
	Hosts      int       `json:"hosts"`
	HostsCount int       `json:"hosts_count"`
	NextPage   int       `json:"next_page,omitempty"`
	Done       bool      `json:"done"`
	At         time.Time `json:"at"`
}

// ToJSON serializes the event for the wire
func (e *BuildEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
