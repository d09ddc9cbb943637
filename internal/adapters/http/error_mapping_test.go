package httpadapter

import (
	"errors"
	"net/http"
	"testing"

	"github.com/studylab/exam-ai-assistant/internal/core/domain"
)

func TestMapErrorToHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.WrapError(domain.ErrInvalidInput, "ask", errors.New("blank question")), http.StatusBadRequest},
		{domain.WrapError(domain.ErrDocumentNotFound, "get", errors.New("no rows")), http.StatusNotFound},
		{domain.WrapError(domain.ErrSessionNotFound, "reset", errors.New("no documents")), http.StatusNotFound},
		{domain.WrapError(domain.ErrTemporary, "generate", errors.New("503")), http.StatusServiceUnavailable},
		{errors.New("something else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := mapErrorToHTTPStatus(tc.err); got != tc.want {
			t.Fatalf("mapErrorToHTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
