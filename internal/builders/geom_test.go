package builders

import "testing"

func TestTriangulateSquareHasTwoTriangles(t *testing.T) {
	square := []Point2D{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
	tris := Triangulate(square, nil)
	if len(tris) != 6 { // 2 triangles * 3 indices
		t.Fatalf("expected 6 indices (2 triangles), got %d", len(tris))
	}
}

func TestTriangulateSquareWithHoleProducesMoreTriangles(t *testing.T) {
	outer := []Point2D{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	hole := []Point2D{{3, 3}, {7, 3}, {7, 7}, {3, 7}}
	tris := Triangulate(outer, [][]Point2D{hole})
	if len(tris) == 0 {
		t.Fatal("expected a non-empty triangulation for square-with-hole")
	}
	if len(tris)%3 != 0 {
		t.Fatalf("triangle index list must be a multiple of 3, got %d", len(tris))
	}
	if len(tris)/3 <= 2 {
		t.Fatalf("expected more triangles than the plain square's 2, got %d", len(tris)/3)
	}
}

func TestTriangulateDegenerateRingReturnsNil(t *testing.T) {
	if got := Triangulate([]Point2D{{0, 0}, {1, 1}}, nil); got != nil {
		t.Fatalf("expected nil triangulation for a 2-point ring, got %v", got)
	}
}
