package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column in outbox_events.
type OutboxAggregateType string

const (
	AggregateStore     OutboxAggregateType = "store"
	AggregateWarehouse OutboxAggregateType = "warehouse"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateStore,
	AggregateWarehouse,
}

// IsValid reports whether the value matches the canonical aggregate types.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column in outbox_events.
type OutboxEventType string

const (
	EventStoreCreated OutboxEventType = "store_created"
	EventStoreUpdated OutboxEventType = "store_updated"
	EventStoreDeleted OutboxEventType = "store_deleted"
)

var validOutboxEventTypes = []OutboxEventType{
	EventStoreCreated,
	EventStoreUpdated,
	EventStoreDeleted,
}

// IsValid reports whether the value matches the canonical event types.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
