package shared

import "testing"

func TestNewPaginationDefaults(t *testing.T) {
	p := NewPagination(0, 0, 45)
	if p.Page != 1 || p.PerPage != 20 {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.TotalPages != 3 {
		t.Fatalf("expected 3 pages got %d", p.TotalPages)
	}
}

func TestLastPage(t *testing.T) {
	cases := []struct {
		count, size, want int
	}{
		{0, 10, 0},
		{1, 10, 0},
		{10, 10, 0},
		{11, 10, 1},
		{25, 10, 2},
		{5, 0, 0},
	}
	for _, c := range cases {
		if got := LastPage(c.count, c.size); got != c.want {
			t.Fatalf("LastPage(%d,%d)=%d want %d", c.count, c.size, got, c.want)
		}
	}
}

func TestClampPageAfterRemoval(t *testing.T) {
	// Removing the last item on the last page moves back one page.
	if got := ClampPage(2, 20, 10); got != 1 {
		t.Fatalf("expected clamp to 1 got %d", got)
	}
	// Emptying the table lands on page zero.
	if got := ClampPage(3, 0, 10); got != 0 {
		t.Fatalf("expected 0 got %d", got)
	}
	// Pages inside range are untouched.
	if got := ClampPage(1, 25, 10); got != 1 {
		t.Fatalf("expected 1 got %d", got)
	}
	if got := ClampPage(-2, 25, 10); got != 0 {
		t.Fatalf("expected 0 got %d", got)
	}
}
