package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassifyErrorReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: ErrorReasonDeadlineExceeded},
		{name: "gorm duplicate", err: gorm.ErrDuplicatedKey, want: ErrorReasonUniqueViolation},
		{name: "pg duplicate", err: &pgconn.PgError{Code: "23505"}, want: ErrorReasonUniqueViolation},
		{name: "pg foreign key", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"}), want: ErrorReasonForeignKey},
		{name: "missing procedure", err: &pgconn.PgError{Code: "42883"}, want: ErrorReasonUndefinedRoutine},
		{name: "not found", err: gorm.ErrRecordNotFound, want: ErrorReasonNotFound},
		{name: "unknown", err: errors.New("boom"), want: ErrorReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyErrorReason(tc.err))
		})
	}
}

func TestGinMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := prometheus.NewRegistry()
	m := newHTTPMetrics(registry, Config{ServiceName: "verlyx-hub", Environment: "test"})

	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/api/deals/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/deals/42", nil))
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues("/api/deals/:id", http.MethodGet, "4xx"))
	assert.Equal(t, 3.0, got)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inflight))
}

func TestObserveErrorSkipsUnknown(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newHTTPMetrics(registry, Config{})

	m.ObserveError(errors.New("boom"))
	m.ObserveError(&pgconn.PgError{Code: "23505"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.dbErrors.WithLabelValues(ErrorReasonUniqueViolation)))
}
