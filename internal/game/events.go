// internal/game/events.go
package game

// Event names broadcast to connected clients after state-changing operations.
const (
	EventCardRevealed         = "cardRevealed"
	EventAICardRevealed       = "ai_card_revealed"
	EventRoundEndCardRevealed = "round_end_card_revealed"
	EventColumnTaken          = "columnTaken"
	EventReassignmentStarting = "reassignmentStarting"
	EventReassignmentComplete = "reassignmentComplete"
	EventGameFinalized        = "gameFinalized"
	EventPlayerReplaced       = "playerReplaced"
)

// Notifier is the fire-and-forget realtime fan-out collaborator. Neither call
// returns an error: delivery is best effort and never blocks engine flow.
type Notifier interface {
	Emit(event string, payload map[string]interface{})
	EmitToRoom(room, event string, payload map[string]interface{})
}

// NopNotifier discards every event. Useful for tools and tests.
type NopNotifier struct{}

func (NopNotifier) Emit(string, map[string]interface{})               {}
func (NopNotifier) EmitToRoom(string, string, map[string]interface{}) {}
