package enums

// OutboxEventType names the domain events emitted through the outbox.
type OutboxEventType string

const (
	EventLowStockAlertRaised OutboxEventType = "inventory.low_stock_alert.raised"
	EventListingSold         OutboxEventType = "marketplace.listing.sold"
)

func (t OutboxEventType) IsValid() bool {
	switch t {
	case EventLowStockAlertRaised, EventListingSold:
		return true
	}
	return false
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateLowStockAlert OutboxAggregateType = "low_stock_alert"
	AggregateListing       OutboxAggregateType = "listing"
)

func (t OutboxAggregateType) IsValid() bool {
	switch t {
	case AggregateLowStockAlert, AggregateListing:
		return true
	}
	return false
}
