package documents

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, types ...DocType) (*Handler, *mockRepository) {
	t.Helper()
	svc, repo := newTestService()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(logger, svc, types), repo
}

func listRequest(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	h.MountRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestListCapsLimit(t *testing.T) {
	h, repo := newTestHandler(t, TypeInvoice, TypeQuotation)

	rec := listRequest(t, h, "/?limit=1000000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxListLimit, repo.lastList.Limit)

	rec = listRequest(t, h, "/?limit=50&page=3")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, repo.lastList.Limit)
	assert.Equal(t, 100, repo.lastList.Offset)
}

func TestListDefaultsPaging(t *testing.T) {
	h, repo := newTestHandler(t, TypeInvoice)

	rec := listRequest(t, h, "/?limit=-1&page=0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, repo.lastList.Limit)
	assert.Equal(t, 0, repo.lastList.Offset)
}

func TestListRejectsForeignDocType(t *testing.T) {
	h, _ := newTestHandler(t, TypeInvoice)

	rec := listRequest(t, h, "/?type=PURCHASE_ORDER")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
