package services

import (
	"errors"
	"fmt"
	"math"

	"crabor/internal/core/domain/model/kernel"
	"crabor/internal/pkg/errs"
)

// EstimatorConfig holds the tunables of the delivery fee and ETA formulas.
type EstimatorConfig struct {
	// BaseFee is charged for every delivery, regardless of distance.
	BaseFee int64
	// PerKmFee is charged per started kilometer beyond FreeRadiusKm.
	PerKmFee int64
	// FreeRadiusKm is the distance covered by the base fee alone.
	FreeRadiusKm float64
	// MaxRadiusKm caps the distance used in the fee calculation.
	MaxRadiusKm float64
	// PreparationMinutes is the assumed kitchen preparation time.
	PreparationMinutes int
	// AvgSpeedKmh is the assumed shipper travel speed.
	AvgSpeedKmh float64
}

// DefaultEstimatorConfig returns the production defaults: 10000 VND base fee,
// 3000 VND per km after the first 2 km, a 10 km fee cap, 15 minutes of
// preparation, and 20 km/h average speed.
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		BaseFee:            10000,
		PerKmFee:           3000,
		FreeRadiusKm:       2,
		MaxRadiusKm:        10,
		PreparationMinutes: 15,
		AvgSpeedKmh:        20,
	}
}

// DeliveryEstimator computes delivery cost and time estimates at
// order-creation time. It is a pure calculation service: the same inputs
// always produce the same outputs.
type DeliveryEstimator struct {
	config EstimatorConfig
}

// NewDeliveryEstimator creates an estimator after validating the config.
func NewDeliveryEstimator(config EstimatorConfig) (DeliveryEstimator, error) {
	if err := errors.Join(
		positiveInt64("baseFee", config.BaseFee),
		positiveInt64("perKmFee", config.PerKmFee),
		positiveFloat("freeRadiusKm", config.FreeRadiusKm),
		positiveFloat("maxRadiusKm", config.MaxRadiusKm),
		positiveFloat("avgSpeedKmh", config.AvgSpeedKmh),
	); err != nil {
		return DeliveryEstimator{}, err
	}

	if config.MaxRadiusKm < config.FreeRadiusKm {
		return DeliveryEstimator{}, errs.NewValueIsInvalidErrorWithCause("maxRadiusKm",
			fmt.Errorf("%g is less than freeRadiusKm %g", config.MaxRadiusKm, config.FreeRadiusKm))
	}
	if config.PreparationMinutes < 0 {
		return DeliveryEstimator{}, errs.NewValueIsInvalidErrorWithCause("preparationMinutes",
			fmt.Errorf("%d is negative", config.PreparationMinutes))
	}

	return DeliveryEstimator{config: config}, nil
}

// Fee returns the delivery fee for a distance: the base fee within the free
// radius, otherwise the base fee plus the per-km fee for every started
// kilometer beyond it, with the chargeable distance capped at the max radius.
func (e DeliveryEstimator) Fee(distanceKm float64) int64 {
	if distanceKm <= e.config.FreeRadiusKm {
		return e.config.BaseFee
	}

	chargeable := math.Min(distanceKm, e.config.MaxRadiusKm) - e.config.FreeRadiusKm
	return e.config.BaseFee + int64(math.Ceil(chargeable))*e.config.PerKmFee
}

// EtaMinutes returns the delivery estimate: preparation time plus travel time
// at the configured average speed, rounded up to whole minutes.
func (e DeliveryEstimator) EtaMinutes(distanceKm float64) int {
	travel := distanceKm / e.config.AvgSpeedKmh * 60
	return int(math.Ceil(float64(e.config.PreparationMinutes) + travel))
}

// Estimate is the convenience used at order creation: distance between
// pickup and dropoff, the fee, and the ETA in one call.
func (e DeliveryEstimator) Estimate(pickup, dropoff kernel.GeoPoint) (distanceKm float64, fee int64, etaMinutes int, err error) {
	distanceKm, err = pickup.DistanceKm(dropoff)
	if err != nil {
		return 0, 0, 0, err
	}
	return distanceKm, e.Fee(distanceKm), e.EtaMinutes(distanceKm), nil
}

func positiveInt64(name string, value int64) error {
	if value <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%d is not greater than 0", value))
	}
	return nil
}

func positiveFloat(name string, value float64) error {
	if value <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%g is not greater than 0", value))
	}
	return nil
}
