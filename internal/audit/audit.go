package audit

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/suteetoe/inventory-service/internal/errs"
	"github.com/suteetoe/inventory-service/internal/model"
	"github.com/suteetoe/inventory-service/internal/repository"
	"github.com/suteetoe/inventory-service/internal/uow"
	"github.com/suteetoe/inventory-service/pkg/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Redacted replaces secret argument values in stored audit rows
const Redacted = "REMOVED_BY_LOGGER"

var secretKeys = map[string]struct{}{
	"password":     {},
	"new_password": {},
}

// Recorder persists audit entries
type Recorder interface {
	Record(ctx context.Context, entry *model.Log) error
}

// Store keeps audit rows in the logs table through its own handle, outside any
// unit of work, so failed operations are recorded after their rollback.
type Store struct {
	logs *repository.Repository[model.Log]
}

// NewStore creates a store over db
func NewStore(db *gorm.DB) *Store {
	return &Store{logs: repository.NewSet(db).Logs}
}

func (s *Store) Record(ctx context.Context, entry *model.Log) error {
	return s.logs.Create(ctx, entry)
}

// List returns at most limit rows, newest first. A limit of 0 returns all rows.
func (s *Store) List(ctx context.Context, limit int) ([]model.Log, error) {
	return s.logs.GetAllWithCondition(ctx, func(db *gorm.DB) *gorm.DB {
		db = db.Order("id DESC")
		if limit > 0 {
			db = db.Limit(limit)
		}
		return db
	})
}

// Prune deletes the oldest rows so that at most keep remain
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	total, err := s.logs.Count(ctx, nil)
	if err != nil {
		return 0, err
	}
	excess := int(total) - keep
	if excess <= 0 {
		return 0, nil
	}

	oldest, err := s.logs.GetAllWithCondition(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Limit(excess)
	})
	if err != nil {
		return 0, err
	}
	ids := make([]uint, 0, len(oldest))
	for _, l := range oldest {
		ids = append(ids, l.ID)
	}
	return s.logs.DeleteWithCondition(ctx, repository.In("id", ids))
}

// Redact copies args replacing secret values, nested maps included
func Redact(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		if _, secret := secretKeys[strings.ToLower(k)]; secret {
			out[k] = Redacted
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = Redact(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// Entry builds the audit row for a finished call
func Entry(call uow.Call, err error) *model.Log {
	kwargs, mErr := json.Marshal(Redact(call.Args))
	if mErr != nil {
		kwargs = []byte("{}")
	}
	entry := &model.Log{
		Func:   call.Name,
		Kwargs: string(kwargs),
		Status: model.LogStatusOK,
	}
	if err != nil {
		entry.Status = model.LogStatusFail
		entry.Message = errs.PublicMessage(err)
	}
	return entry
}

// Interceptor records every call with status OK or FAIL. A failed write is
// logged and counted; it never alters the outcome of the call.
func Interceptor(rec Recorder, log *zap.Logger, m *metrics.Metrics) uow.Interceptor {
	return func(next uow.Handler) uow.Handler {
		return func(ctx context.Context, call uow.Call) error {
			err := next(ctx, call)

			entry := Entry(call, err)
			if recErr := rec.Record(context.WithoutCancel(ctx), entry); recErr != nil {
				if m != nil {
					m.AuditWriteFailures.Inc()
				}
				log.Error("Failed to write audit log",
					zap.String("operation", call.Name),
					zap.String("status", entry.Status),
					zap.Error(recErr))
			}
			return err
		}
	}
}
