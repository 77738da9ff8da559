package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestQueryTracer_SpanHijoConConsulta(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	qt := newQueryTracer(tp)

	ctx, parent := tp.Tracer("test").Start(context.Background(), "DELETE /api/customers/:id")
	ctx = qt.TraceQueryStart(ctx, nil, pgx.TraceQueryStartData{SQL: `DELETE FROM customer WHERE id = $1`})
	qt.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("DELETE 1")})
	parent.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	query := spans[0]
	assert.Equal(t, "postgres.query", query.Name())
	assert.Equal(t, parent.SpanContext().SpanID(), query.Parent().SpanID())
	assert.Contains(t, query.Attributes(), attribute.String("db.statement", `DELETE FROM customer WHERE id = $1`))
	assert.Contains(t, query.Attributes(), attribute.Int64("db.rows_affected", 1))
	assert.Equal(t, codes.Unset, query.Status().Code)
}

func TestQueryTracer_ErrorMarcaElSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	qt := newQueryTracer(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))

	ctx := qt.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: `SELECT 1`})
	qt.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{Err: errors.New("conn closed")})

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "conn closed", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1, "RecordError añade un evento exception")
}
