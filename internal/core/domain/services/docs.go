// Package services contains stateless domain services that operate across
// aggregates and value objects: the transition authorization policy and the
// delivery fee/ETA estimator.
package services
