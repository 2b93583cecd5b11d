package domain

// AggregateRoot is the consistency boundary that records domain events.
type AggregateRoot interface {
	Entity
	DomainEvents() []DomainEvent
	ClearDomainEvents()
	Version() int
}

// BaseAggregateRoot embeds BaseEntity and collects pending events.
type BaseAggregateRoot struct {
	BaseEntity
	pending []DomainEvent
	version int
}

// NewBaseAggregateRoot returns a fresh aggregate at version 0.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity()}
}

// RehydrateBaseAggregateRoot rebuilds an aggregate from stored state.
func RehydrateBaseAggregateRoot(entity BaseEntity, version int) BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: entity, version: version}
}

// DomainEvents returns events recorded since the last clear.
func (a *BaseAggregateRoot) DomainEvents() []DomainEvent {
	return a.pending
}

// ClearDomainEvents drops the recorded events, typically after dispatch.
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.pending = nil
}

// AddDomainEvent records an event.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.pending = append(a.pending, event)
}

// Version is the optimistic-concurrency counter.
func (a *BaseAggregateRoot) Version() int { return a.version }

// IncrementVersion advances the version after a successful write.
func (a *BaseAggregateRoot) IncrementVersion() { a.version++ }
