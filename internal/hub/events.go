package hub

// Room names. Clients subscribe to the rooms matching their role; every
// mutation publishes to the rooms whose viewers should re-fetch.
const RoomAdmin = "admin"

func RoundRoom(roundID string) string             { return "round:" + roundID }
func PanelRoom(panelID string) string             { return "panel:" + panelID }
func ParticipantRoom(participantID string) string { return "participant:" + participantID }
func SubEventRoom(subEventID string) string       { return "subevent:" + subEventID }

// Event names.
const (
	EventPanelCreated        = "panel:created"
	EventJudgeLoggedIn       = "judge:logged_in"
	EventEvaluationSubmitted = "evaluation:submitted"
	EventAdminRequest        = "admin:request"
	EventGroupFormed         = "group:formed"
	EventGroupUpdated        = "group:updated"
	EventEvaluationUpdated   = "evaluation:updated"
	EventGroupAssigned       = "group:assigned"
	EventTopicUsedBulk       = "topic:used_bulk"
	EventTopicClaimed        = "topic:claimed"
	EventTopicReset          = "topic:reset"
	EventRoundStarted        = "round:started"
	EventRoundEnded          = "round:ended"
	EventParticipantStatus   = "participant:status"
)

// Event is a re-fetch hint, not a state carrier. The payload holds just the
// identifying keys a subscriber needs to decide what to reload.
type Event struct {
	Room    string            `json:"room"`
	Name    string            `json:"event"`
	Payload map[string]string `json:"payload,omitempty"`
}
