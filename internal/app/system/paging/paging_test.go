package paging_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/taskhub/internal/app/system/paging"
)

func TestParsePage(t *testing.T) {
	cases := []struct {
		query string
		want  int
	}{
		{"", 1},
		{"page=3", 3},
		{"page=0", 1},
		{"page=-2", 1},
		{"page=abc", 1},
	}
	for _, c := range cases {
		req := httptest.NewRequest("GET", "/audit?"+c.query, nil)
		if got := paging.ParsePage(req); got != c.want {
			t.Errorf("ParsePage(%q): got %d, want %d", c.query, got, c.want)
		}
	}
}

func TestOffset(t *testing.T) {
	if got := paging.Offset(1); got != 0 {
		t.Errorf("page 1 offset: got %d, want 0", got)
	}
	if got := paging.Offset(3); got != int64(2*paging.PageSize) {
		t.Errorf("page 3 offset: got %d", got)
	}
}

func TestTrimPage(t *testing.T) {
	full := make([]int, paging.PageSize+1)
	if !paging.TrimPage(&full) {
		t.Error("overfull slice should report a next page")
	}
	if len(full) != paging.PageSize {
		t.Errorf("trimmed length: got %d, want %d", len(full), paging.PageSize)
	}

	short := make([]int, 3)
	if paging.TrimPage(&short) {
		t.Error("short slice should not report a next page")
	}
	if len(short) != 3 {
		t.Errorf("short slice length changed: got %d", len(short))
	}
}
