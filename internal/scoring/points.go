package scoring

import "fmt"

const TargetCount = 40

var pointsTable = [TargetCount]int{
	2000, 100, 3000, 100, 3000,
	100, 3000, 2000, 200, 200,
	2000, 100, 100, 3000, 2000,
	3000, 200, 200, 200, 200,
	100, 2000, 2000, 100, 3000,
	2000, 100, 3000, 2000, 2000,
	3000, 3000, 200, 3000, 2000,
	200, 100, 2000, 100, 200,
}

// PointsFor returns the value of target objectIndex (1-based).
func PointsFor(objectIndex int) (int, error) {
	if objectIndex < 1 || objectIndex > TargetCount {
		return 0, fmt.Errorf("%w: object index must be between 1 and %d", ErrInvalidInput, TargetCount)
	}
	return pointsTable[objectIndex-1], nil
}

// PointsTable returns a copy of the table in target order.
func PointsTable() []int {
	out := make([]int, TargetCount)
	copy(out, pointsTable[:])
	return out
}
