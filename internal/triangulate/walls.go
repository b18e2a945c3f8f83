package triangulate

import (
	"github.com/talgya/lookout/internal/geom"
	"github.com/talgya/lookout/internal/metrics"
	"github.com/talgya/lookout/internal/world"
)

// addEdgeWall runs a wall along the boundary between a walled and an
// unwalled cell. Rivers and roads leave a capped gap in the middle.
func (t *Triangulator) addEdgeWall(near EdgeVertices, nearCell *world.Cell, far EdgeVertices, farCell *world.Cell, hasRiver, hasRoad bool) {
	if nearCell.Walled() == farCell.Walled() ||
		nearCell.IsUnderwater() || farCell.IsUnderwater() ||
		edgeTypeBetween(nearCell, farCell) == metrics.EdgeCliff {
		return
	}

	t.wallSegment(near.V1, far.V1, near.V2, far.V2, false)
	if hasRiver || hasRoad {
		t.wallCap(near.V2, far.V2)
		t.wallCap(far.V4, near.V4)
	} else {
		t.wallSegment(near.V2, far.V2, near.V3, far.V3, false)
		t.wallSegment(near.V3, far.V3, near.V4, far.V4, false)
	}
	t.wallSegment(near.V4, far.V4, near.V5, far.V5, false)
}

// addCornerWall joins the edge walls meeting at a three-cell corner. The
// cell whose walled flag differs from the other two is the pivot; the
// other two keep their clockwise order after it.
func (t *Triangulator) addCornerWall(c1, c2, c3 corner) {
	w1, w2, w3 := c1.cell.Walled(), c2.cell.Walled(), c3.cell.Walled()
	switch {
	case w1 == w2 && w2 == w3:
	case w2 == w3:
		t.cornerWallSegment(c1, c2, c3)
	case w1 == w3:
		t.cornerWallSegment(c2, c3, c1)
	default:
		t.cornerWallSegment(c3, c1, c2)
	}
}

func (t *Triangulator) cornerWallSegment(pivot, left, right corner) {
	if pivot.cell.IsUnderwater() {
		return
	}
	hasLeft := !left.cell.IsUnderwater() && edgeTypeBetween(pivot.cell, left.cell) != metrics.EdgeCliff
	hasRight := !right.cell.IsUnderwater() && edgeTypeBetween(pivot.cell, right.cell) != metrics.EdgeCliff

	switch {
	case hasLeft && hasRight:
		tower := false
		if left.cell.Elevation() == right.cell.Elevation() {
			h := t.surface.SampleHash(pivot.v.Add(left.v).Add(right.v).Scale(1.0 / 3))
			tower = h.E < metrics.WallTowerThreshold
		}
		t.wallSegment(pivot.v, left.v, pivot.v, right.v, tower)
	case hasLeft:
		if left.cell.Elevation() < right.cell.Elevation() {
			t.wallWedge(pivot.v, left.v, right.v)
		} else {
			t.wallCap(pivot.v, left.v)
		}
	case hasRight:
		if right.cell.Elevation() < left.cell.Elevation() {
			t.wallWedge(right.v, pivot.v, left.v)
		} else {
			t.wallCap(right.v, pivot.v)
		}
	}
}

// wallSegment builds one section of wall: an outer face, an inner face and
// a top. Each side's foot sits between its near and far vertex.
func (t *Triangulator) wallSegment(nearLeft, farLeft, nearRight, farRight geom.Vec3, tower bool) {
	nearLeft = t.surface.Perturb(nearLeft)
	farLeft = t.surface.Perturb(farLeft)
	nearRight = t.surface.Perturb(nearRight)
	farRight = t.surface.Perturb(farRight)

	left := metrics.WallLerp(nearLeft, farLeft)
	right := metrics.WallLerp(nearRight, farRight)
	leftOffset := metrics.WallThicknessOffset(nearLeft, farLeft)
	rightOffset := metrics.WallThicknessOffset(nearRight, farRight)
	leftTop := left.Y + metrics.WallHeight
	rightTop := right.Y + metrics.WallHeight

	walls := t.mesh.Walls
	v1 := left.Sub(leftOffset)
	v2 := right.Sub(rightOffset)
	v3, v4 := v1.WithY(leftTop), v2.WithY(rightTop)
	walls.AddQuadUnperturbed(v1, v2, v3, v4)

	t1, t2 := v3, v4
	v1 = left.Add(leftOffset)
	v2 = right.Add(rightOffset)
	v3, v4 = v1.WithY(leftTop), v2.WithY(rightTop)
	walls.AddQuadUnperturbed(v2, v1, v4, v3)
	walls.AddQuadUnperturbed(t1, t2, v3, v4)

	if tower {
		t.addTower(left, right)
	}
}

// wallCap closes the open end of a wall.
func (t *Triangulator) wallCap(near, far geom.Vec3) {
	near = t.surface.Perturb(near)
	far = t.surface.Perturb(far)
	center := metrics.WallLerp(near, far)
	thickness := metrics.WallThicknessOffset(near, far)

	v1 := center.Sub(thickness)
	v2 := center.Add(thickness)
	top := center.Y + metrics.WallHeight
	t.mesh.Walls.AddQuadUnperturbed(v1, v2, v1.WithY(top), v2.WithY(top))
}

// wallWedge ends a wall against a cliff, leaning into the point.
func (t *Triangulator) wallWedge(near, far, point geom.Vec3) {
	near = t.surface.Perturb(near)
	far = t.surface.Perturb(far)
	point = t.surface.Perturb(point)

	center := metrics.WallLerp(near, far)
	thickness := metrics.WallThicknessOffset(near, far)
	top := center.Y + metrics.WallHeight

	v1 := center.Sub(thickness)
	v2 := center.Add(thickness)
	v3, v4 := v1.WithY(top), v2.WithY(top)
	pointTop := point.WithY(top)
	point.Y = center.Y

	walls := t.mesh.Walls
	walls.AddQuadUnperturbed(v1, point, v3, pointTop)
	walls.AddQuadUnperturbed(point, v2, pointTop, v4)
	walls.AddTriangleUnperturbed(pointTop, v3, v4)
}
