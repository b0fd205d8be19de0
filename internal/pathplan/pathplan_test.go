package pathplan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/sphereforge/internal/sphere"
)

func uniformRadius(sphere.Vec3) float64 { return 100 }

func TestPlanPointsStayOnSurface(t *testing.T) {
	start := sphere.Vec3{X: 100, Y: 0, Z: 0}
	end := sphere.Vec3{X: 0, Y: 100, Z: 0}

	points := Plan(start, end, uniformRadius, nil, nil)
	assert.NotEmpty(t, points)
	for _, p := range points {
		assert.InDelta(t, 100, p.Length(), 1e-6)
	}
}

func TestPlanEndsNearDestination(t *testing.T) {
	start := sphere.Vec3{X: 100, Y: 0, Z: 0}
	end := sphere.Vec3{X: 0, Y: 100, Z: 0}

	points := Plan(start, end, uniformRadius, nil, nil)
	last := points[len(points)-1]
	assert.InDelta(t, end.Normalize().X*100, last.X, 1e-6)
	assert.InDelta(t, end.Normalize().Y*100, last.Y, 1e-6)
}

func TestPlanDeflectsAroundObstacle(t *testing.T) {
	start := sphere.Vec3{X: 100, Y: 0, Z: 0}
	end := sphere.Vec3{X: 0, Y: 100, Z: 0}
	mid := sphere.Vec3{X: 70.7, Y: 70.7, Z: 0}.Normalize()

	obstacles := []Obstacle{{Dir: mid, Radius: 0.9}}
	points := Plan(start, end, uniformRadius, obstacles, nil)

	for _, p := range points {
		dir := p.Normalize()
		angle := dir.Dot(mid)
		assert.Less(t, angle, 1.0, "deflected point should not sit exactly at obstacle center")
	}
}
