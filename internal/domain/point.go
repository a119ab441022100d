package domain

// Point is one measurement record for a household position on a shared
// electrical line. HomeNum is the position along the line; ordering by it is
// semantically load-bearing for the analysis.
type Point struct {
	HomeID     int64
	HomeNum    int64
	Volts      float64
	Ampers     float64
	Power      float64
	Resistance float64
}

// PointInput carries the measured values for a point that has not been
// assigned an identifier yet.
type PointInput struct {
	HomeNum    int64
	Volts      float64
	Ampers     float64
	Power      float64
	Resistance float64
}

// PointPatch describes a partial update; nil fields are left unchanged.
type PointPatch struct {
	HomeNum    *int64
	Volts      *float64
	Ampers     *float64
	Power      *float64
	Resistance *float64
}

// Paradox is the analyzer result: the point with the maximum delta and the
// delta itself.
type Paradox struct {
	HomeID int64
	Delta  float64
}
