package cart

// Action labels the mutation that produced a change event.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
	ActionUpdate Action = "update"
	ActionClear  Action = "clear"
)

// ChangeEvent is broadcast to observers after every cart mutation. Items is a
// snapshot copy; observers may retain it freely.
type ChangeEvent struct {
	SessionID string     `json:"sessionId"`
	Items     []LineItem `json:"cart"`
	Action    Action     `json:"action"`
}

// Observer receives cart change events. Observers run synchronously on the
// mutating goroutine and must not call back into the store.
type Observer func(ChangeEvent)
