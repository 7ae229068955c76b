package server

import (
	"errors"
	"net/http"
	"testing"

	"attendance-station/internal/apperr"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.InvalidArgument("bad input"), http.StatusBadRequest},
		{apperr.Unauthorized("nope"), http.StatusUnauthorized},
		{apperr.NotFound("missing"), http.StatusNotFound},
		{apperr.NoMatch("unknown face"), http.StatusNotFound},
		{apperr.DuplicateIdentity("already enrolled"), http.StatusConflict},
		{apperr.QualityRejected("too dark"), http.StatusUnprocessableEntity},
		{apperr.SensorUnavailable("no camera"), http.StatusServiceUnavailable},
		{apperr.Storage("db down", errors.New("io error")), http.StatusInternalServerError},
		{errors.New("plain error"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := statusForError(tc.err); got != tc.want {
			t.Errorf("statusForError(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
