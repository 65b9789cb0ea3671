package orders

// PlacementState tracks one order placement through the workflow. Once
// StatePersisted is reached the order is committed; nothing after it can fail
// the placement, and there is no compensating transaction back out of it.
type PlacementState string

const (
	StateReceived     PlacementState = "RECEIVED"
	StateStockChecked PlacementState = "STOCK_CHECKED"
	StatePersisted    PlacementState = "PERSISTED"
	StateNotified     PlacementState = "NOTIFIED"
	StatePublished    PlacementState = "PUBLISHED"
	StateDone         PlacementState = "DONE"
	StateFailed       PlacementState = "FAILED"
)

var validNext = map[PlacementState]map[PlacementState]bool{
	StateReceived:     {StateStockChecked: true, StateFailed: true},
	StateStockChecked: {StatePersisted: true, StateFailed: true},
	StatePersisted:    {StateNotified: true},
	StateNotified:     {StatePublished: true},
	StatePublished:    {StateDone: true},
	StateDone:         {},
	StateFailed:       {},
}

func CanTransition(from, to PlacementState) bool {
	return validNext[from][to]
}
