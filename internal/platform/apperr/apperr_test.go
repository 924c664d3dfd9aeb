package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(E(KindConflict, "slot taken")); got != KindConflict {
		t.Errorf("KindOf = %v, want conflict", got)
	}
	if got := KindOf(errors.New("raw")); got != KindInternal {
		t.Errorf("unclassified error: KindOf = %v, want internal", got)
	}
}

func TestKindOfWrapped(t *testing.T) {
	inner := E(KindNotFound, "doctor not found")
	outer := fmt.Errorf("booking: %w", inner)
	if got := KindOf(outer); got != KindNotFound {
		t.Errorf("KindOf through wrap chain = %v, want not_found", got)
	}
}

func TestInternalHidesDetail(t *testing.T) {
	err := Internal(errors.New("pq: connection refused"))
	he := ToHTTP(err)
	if he.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", he.Code)
	}
	if he.Message != "internal server error" {
		t.Errorf("internal detail leaked to client: %v", he.Message)
	}
}

func TestStatusCode(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindConflict, http.StatusConflict},
		{KindInvalid, http.StatusBadRequest},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := StatusCode(c.kind); got != c.want {
			t.Errorf("StatusCode(%v) = %d, want %d", c.kind, got, c.want)
		}
	}
}
