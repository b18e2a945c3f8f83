package hex

import "testing"

func TestDirectionRing(t *testing.T) {
	for _, d := range Directions {
		if d.Opposite().Opposite() != d {
			t.Fatalf("opposite of opposite of %s should be itself", d)
		}
		if d.Next().Previous() != d {
			t.Fatalf("next then previous of %s should be itself", d)
		}
		if d.Next2() != d.Next().Next() {
			t.Fatalf("next2 of %s should equal two nexts", d)
		}
		if d.Previous2() != d.Previous().Previous() {
			t.Fatalf("previous2 of %s should equal two previouses", d)
		}
	}
	if NE.Previous() != NW || NW.Next() != NE {
		t.Fatalf("ring should wrap between NW and NE")
	}
	if SE.Opposite() != NW || W.Opposite() != E {
		t.Fatalf("unexpected opposites")
	}
	if Direction(6).Valid() {
		t.Fatalf("direction 6 should be invalid")
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	const width = 20
	for z := 0; z < 15; z++ {
		for x := 0; x < width; x++ {
			c := FromOffset(x, z)
			if c.X+c.Y()+c.Z != 0 {
				t.Fatalf("cube invariant broken for %v", c)
			}
			ox, oz := c.Offset()
			if ox != x || oz != z {
				t.Fatalf("expected offset (%d,%d), got (%d,%d)", x, z, ox, oz)
			}
			if got, want := c.OffsetIndex(width), z*width+x; got != want {
				t.Fatalf("expected index %d, got %d", want, got)
			}
		}
	}
}

func TestFromPositionFindsCenters(t *testing.T) {
	for z := 0; z < 10; z++ {
		for x := 0; x < 10; x++ {
			want := FromOffset(x, z)
			got := FromPosition(Center(x, z))
			if got != want {
				t.Fatalf("cell (%d,%d): expected %v, got %v", x, z, want, got)
			}
		}
	}
}

func TestDiskMatchesDistance(t *testing.T) {
	center := FromOffset(5, 5)
	for radius := 0; radius <= 3; radius++ {
		disk := Disk(center, radius)
		if want := 1 + 3*radius*(radius+1); len(disk) != want {
			t.Fatalf("radius %d: expected %d cells, got %d", radius, want, len(disk))
		}
		seen := make(map[Coord]bool)
		for _, c := range disk {
			if Distance(center, c) > radius {
				t.Fatalf("radius %d: %v is %d away", radius, c, Distance(center, c))
			}
			if seen[c] {
				t.Fatalf("radius %d: duplicate %v", radius, c)
			}
			seen[c] = true
		}
	}
}
