package response

import (
	"encoding/json"
	"misikaMarket/domain"
	"strings"
	"testing"
	"time"
)

func TestSuccessEnvelope(t *testing.T) {
	now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	defer func() { now = time.Now }()

	body, err := json.Marshal(Success("ok", map[string]int{"n": 1}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"success":true,"message":"ok","data":{"n":1},"timestamp":"2024-01-02T03:04:05Z"}`
	if string(body) != want {
		t.Fatalf("got %s\nwant %s", body, want)
	}
}

func TestErrorEnvelopeHasNullData(t *testing.T) {
	body, _ := json.Marshal(Error("NOT_FOUND", "order not found", ""))
	s := string(body)
	if !strings.Contains(s, `"success":false`) || !strings.Contains(s, `"data":null`) {
		t.Fatalf("unexpected body %s", s)
	}
	if strings.Contains(s, "stack") {
		t.Fatalf("empty stack must be omitted: %s", s)
	}
}

func TestPaginatedEnvelope(t *testing.T) {
	pg := domain.NewPagination(domain.NewPageRequest(1, 10, 10), 11)
	body, _ := json.Marshal(Paginated("list", []int{1}, pg))
	s := string(body)
	for _, part := range []string{`"currentPage":1`, `"totalPages":2`, `"totalItems":11`, `"hasNext":true`, `"hasPrev":false`} {
		if !strings.Contains(s, part) {
			t.Fatalf("missing %s in %s", part, s)
		}
	}
}
