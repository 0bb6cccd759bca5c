package core

import "testing"

func place(t *testing.T, b *Board, s Stone, points ...Point) {
	t.Helper()
	for _, p := range points {
		if err := b.Set(p, s); err != nil {
			t.Fatalf("place %v: %v", p, err)
		}
	}
}

func line(start Point, d Direction, n int) []Point {
	points := make([]Point, n)
	for i := range points {
		points[i] = start.step(d, i)
	}
	return points
}

func TestIsWinAllDirections(t *testing.T) {
	cases := []struct {
		name  string
		start Point
		dir   Direction
	}{
		{"row", Point{Row: 7, Col: 3}, Horizontal},
		{"column", Point{Row: 2, Col: 7}, Vertical},
		{"diagonal", Point{Row: 3, Col: 3}, Diagonal},
		{"anti-diagonal", Point{Row: 3, Col: 11}, AntiDiagonal},
	}
	for _, tc := range cases {
		b := NewBoard(15)
		points := line(tc.start, tc.dir, 5)
		place(t, b, Black, points[:4]...)
		if IsWin(b, points[3]) {
			t.Fatalf("%s: expected no win with four stones", tc.name)
		}
		place(t, b, Black, points[4])
		if !IsWin(b, points[4]) {
			t.Fatalf("%s: expected win at %v", tc.name, points[4])
		}
	}
}

func TestBlockedFourIsNotWin(t *testing.T) {
	b := NewBoard(15)
	place(t, b, White, Point{Row: 7, Col: 3}, Point{Row: 7, Col: 8})
	place(t, b, Black, line(Point{Row: 7, Col: 4}, Horizontal, 4)...)
	if IsWin(b, Point{Row: 7, Col: 7}) {
		t.Fatalf("expected blocked four to not win")
	}
	if got := ContinuousRun(b, Point{Row: 7, Col: 5}, Horizontal); got != 4 {
		t.Fatalf("expected run of 4, got %d", got)
	}
	if got := ContinuousRun(b, Point{Row: 0, Col: 0}, Horizontal); got != 0 {
		t.Fatalf("expected run of 0 on empty cell, got %d", got)
	}
}

func TestIsDraw(t *testing.T) {
	// Rows alternate in pairs so no line reaches five.
	b, err := ParseBoard("XXOOX\nOOXXO\nXXOOX\nOOXXO\nXXOO.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := Point{Row: 4, Col: 4}
	if IsDraw(b, last) {
		t.Fatalf("expected no draw with an empty cell")
	}
	place(t, b, Black, last)
	if !IsDraw(b, last) {
		t.Fatalf("expected draw on full board without five")
	}

	w := NewBoard(5)
	for col := 0; col < 5; col++ {
		place(t, w, Black, Point{Row: 0, Col: col})
	}
	for row := 1; row < 5; row++ {
		for col := 0; col < 5; col++ {
			s := White
			if (row+col)%2 == 0 {
				s = Black
			}
			place(t, w, s, Point{Row: row, Col: col})
		}
	}
	if IsDraw(w, Point{Row: 0, Col: 4}) {
		t.Fatalf("expected no draw when the last move wins")
	}
}

func TestNextType(t *testing.T) {
	if NextType(Black) != White || NextType(White) != Black {
		t.Fatalf("expected Black and White to toggle")
	}
	for _, s := range []Stone{Black, White} {
		if NextType(NextType(s)) != s {
			t.Fatalf("expected double toggle to return %v", s)
		}
	}
	if NextType(Empty) != Empty {
		t.Fatalf("expected Empty to map to Empty")
	}
}

func TestIsFeasibleLine(t *testing.T) {
	b := NewBoard(15)
	place(t, b, Black, Point{Row: 0, Col: 0}, Point{Row: 0, Col: 1})
	place(t, b, White, Point{Row: 0, Col: 3})
	if IsFeasibleLine(b, Point{Row: 0, Col: 0}, Horizontal) {
		t.Fatalf("expected cornered line to be infeasible")
	}
	if !IsFeasibleLine(b, Point{Row: 0, Col: 0}, Vertical) {
		t.Fatalf("expected open column to be feasible")
	}
}

func TestScanLineFeatures(t *testing.T) {
	b := NewBoard(15)
	place(t, b, Black, Point{Row: 5, Col: 5}, Point{Row: 7, Col: 7}, Point{Row: 8, Col: 8})
	f := ScanLineFeatures(b, Point{Row: 5, Col: 5}, Diagonal)
	if f.Serial != 3 || f.Gap != 2 || !f.Spaced || f.OpenEnds != 2 {
		t.Fatalf("expected serial 3 gap 2 spaced with two open ends, got %+v", f)
	}
	if got := ScanLineFeatures(b, Point{Row: 0, Col: 0}, Diagonal); got != (LineFeatures{}) {
		t.Fatalf("expected zero features on empty point, got %+v", got)
	}
}
