// Package order contains the order aggregate and its supporting value
// objects: line items, the monetary breakdown, payment/delivery enums, and
// the lifecycle status state machine.
//
// The aggregate is the single writer for an order: every status change goes
// through a validated method that appends to the immutable status history.
// Authorization of transitions lives in the services package; persistence
// and broadcasting live behind ports.
package order
