// Package analysis implements the paradox scan over an ordered series of
// measurement points. For every interior point it relates the power dissipated
// by the voltage drop to the next point across the point's resistance to the
// power implied by that resistance and the summed current of all points
// further down the line.
package analysis

import "points-service/internal/domain"

// MinPoints is the smallest series the scan is defined for: one interior
// candidate plus its neighbours.
const MinPoints = 3

// FindParadox returns the point with the maximum delta. Points must already be
// ordered by position along the line; the first and last points are never
// candidates but still contribute as the next point or to the downstream
// current sum. Returns domain.ErrInsufficientData for fewer than MinPoints.
func FindParadox(points []domain.Point) (domain.Paradox, error) {
	if len(points) < MinPoints {
		return domain.Paradox{}, domain.ErrInsufficientData
	}

	best := domain.Paradox{}
	for i := 1; i < len(points)-1; i++ {
		current := points[i]
		next := points[i+1]

		voltDiff := current.Volts - next.Volts
		var voltPower float64
		if current.Resistance != 0 {
			voltPower = voltDiff * voltDiff / current.Resistance
		}

		// Only homes strictly after the next one count as downstream.
		var futureAmpers float64
		for _, future := range points[i+2:] {
			futureAmpers += future.Ampers
		}

		var delta float64
		if futureAmpers != 0 && current.Resistance != 0 {
			amperPower := futureAmpers * futureAmpers * current.Resistance
			delta = voltPower / amperPower
		}

		// Strict > keeps the first maximum on ties.
		if i == 1 || delta > best.Delta {
			best = domain.Paradox{HomeID: current.HomeID, Delta: delta}
		}
	}

	return best, nil
}
