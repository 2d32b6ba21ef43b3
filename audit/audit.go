// Package audit intercepts every mutation made through the generic data-access
// surface and records one redacted AuditLog row per call. The interception is
// modelled as a closed set of operation kinds plus a continuation that runs
// the real database call; Auditor.Exec is the single generic wrapper around
// all of them.
//
// Audit writes are a best-effort side effect: no failure in here (pre-state
// lookup, serialization, the audit insert itself) may change the outcome of
// the business mutation it observed.
package audit

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"praxis-backend/models"
	"praxis-backend/requestctx"

	"go.uber.org/zap"
)

// Kind identifies one mutation variant of the data-access surface.
// The string value doubles as the persisted audit action.
type Kind string

const (
	KindCreate     Kind = "CREATE"
	KindUpdate     Kind = "UPDATE"
	KindUpsert     Kind = "UPSERT"
	KindDelete     Kind = "DELETE"
	KindCreateMany Kind = "CREATE_MANY"
	KindUpdateMany Kind = "UPDATE_MANY"
	KindDeleteMany Kind = "DELETE_MANY"
)

func (k Kind) many() bool { return strings.HasSuffix(string(k), "_MANY") }

// auditEntity is the one entity whose mutations are never audited,
// otherwise every audit insert would recurse into another audit insert.
const auditEntity = "AuditLog"

// Op describes one intercepted mutation.
type Op struct {
	Kind     Kind
	Entity   string // logical model name, e.g. "Patient"
	TargetID string // primary key from the caller's where clause, if known
	Data     any    // submitted payload (row, rows, or updates map)
}

// PointLookup fetches the current row for an entity by primary key so the
// interceptor can snapshot pre-state for updates and deletes. Implementations
// return ok=false for any failure; the mutation proceeds regardless.
type PointLookup interface {
	PointLookup(ctx context.Context, entity, id string) (any, bool)
}

// Sink persists finished audit records.
type Sink interface {
	Write(ctx context.Context, rec *models.AuditLog) error
}

type Auditor struct {
	sink   Sink
	lookup PointLookup
	log    *zap.Logger
}

func New(sink Sink, lookup PointLookup, log *zap.Logger) *Auditor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Auditor{sink: sink, lookup: lookup, log: log}
}

// Exec runs op's continuation and, if it succeeds, records one audit entry.
// For updates and deletes the pre-state is captured first, best-effort.
// The continuation's result and error pass through unchanged.
func (a *Auditor) Exec(ctx context.Context, op Op, run func() (any, error)) (any, error) {
	var old any
	hasOld := false
	if (op.Kind == KindUpdate || op.Kind == KindDelete) && op.TargetID != "" &&
		a.lookup != nil && op.Entity != auditEntity {
		old, hasOld = a.lookup.PointLookup(ctx, op.Entity, op.TargetID)
	}

	result, err := run()
	if err != nil {
		return result, err
	}

	a.record(ctx, op, old, hasOld, result)
	return result, nil
}

func (a *Auditor) record(ctx context.Context, op Op, old any, hasOld bool, result any) {
	if op.Entity == auditEntity {
		return
	}

	rec := &models.AuditLog{
		Action:    string(op.Kind),
		Entity:    op.Entity,
		EntityID:  resolveEntityID(op, result),
		Timestamp: time.Now().UTC(),
	}
	if rc, ok := requestctx.From(ctx); ok {
		rec.UserID = nullable(rc.UserID)
		rec.IPAddress = nullable(rc.IPAddress)
		rec.UserAgent = nullable(rc.UserAgent)
	}
	if hasOld {
		rec.OldValues = marshalRedacted(old)
	}
	if nv := newValues(op, result); nv != nil {
		rec.NewValues = marshalRedacted(nv)
	}

	if err := a.sink.Write(ctx, rec); err != nil {
		// Swallowed: the business mutation already succeeded.
		a.log.Warn("audit write failed",
			zap.String("entity", op.Entity),
			zap.String("action", string(op.Kind)),
			zap.Error(err))
	}
}

// newValues picks the post-state snapshot. Bulk creates/updates store the
// submitted payload because the store only reports an affected-row count;
// bulk deletes have nothing useful to store.
func newValues(op Op, result any) any {
	switch op.Kind {
	case KindCreate, KindUpsert, KindUpdate, KindDelete:
		return result
	case KindCreateMany, KindUpdateMany:
		return op.Data
	default:
		return nil
	}
}

// resolveEntityID picks the audited row's primary key: the result's own id,
// else the targeted id, else the first element of an array result, else the
// BULK/UNKNOWN sentinels.
func resolveEntityID(op Op, result any) string {
	if id, ok := extractID(result); ok {
		return id
	}
	if op.TargetID != "" {
		return op.TargetID
	}
	rv := reflect.ValueOf(result)
	if rv.IsValid() && rv.Kind() == reflect.Slice && rv.Len() > 0 {
		if id, ok := extractID(rv.Index(0).Interface()); ok {
			return id
		}
	}
	if op.Kind.many() {
		return "BULK"
	}
	return "UNKNOWN"
}

// extractID pulls an "id" out of a struct, struct pointer or map result.
func extractID(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return "", false
		}
		mv := rv.MapIndex(reflect.ValueOf("id"))
		if !mv.IsValid() {
			return "", false
		}
		return idString(mv.Interface())
	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := strings.Split(f.Tag.Get("json"), ",")[0]
			if name != "id" && f.Name != "ID" && f.Name != "Id" {
				continue
			}
			return idString(rv.Field(i).Interface())
		}
	}
	return "", false
}

func idString(v any) (string, bool) {
	switch id := v.(type) {
	case nil:
		return "", false
	case string:
		return id, id != ""
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			if rv.IsZero() {
				return "", false
			}
			return fmt.Sprint(v), true
		}
		return "", false
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
