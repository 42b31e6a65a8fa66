package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/suteetoe/inventory-service/internal/errs"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filters are column equality conditions joined with AND
type Filters map[string]any

// Condition is a gorm scope narrowing a query
type Condition func(db *gorm.DB) *gorm.DB

// Sentinel names the column and reserved value that identify a placeholder row
type Sentinel struct {
	Column string
	Value  string
}

// Options describe the entity served by a repository
type Options struct {
	Entity       string
	NotFoundCode string
	Sentinel     *Sentinel
}

// Repository is typed CRUD over one entity. Unless WithSentinels is used, every
// read and write excludes the entity's sentinel row.
type Repository[T any] struct {
	db               *gorm.DB
	opts             Options
	includeSentinels bool
}

// New creates a repository over db
func New[T any](db *gorm.DB, opts Options) *Repository[T] {
	if opts.NotFoundCode == "" {
		opts.NotFoundCode = errs.CodeNotFound
	}
	return &Repository[T]{db: db, opts: opts}
}

// WithSentinels returns a repository that also sees sentinel rows
func (r *Repository[T]) WithSentinels() *Repository[T] {
	cp := *r
	cp.includeSentinels = true
	return &cp
}

func (r *Repository[T]) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx).Model(new(T))
	if s := r.opts.Sentinel; s != nil && !r.includeSentinels {
		q = q.Where(clause.Neq{Column: clause.Column{Name: s.Column}, Value: s.Value})
	}
	return q
}

func where(q *gorm.DB, filters Filters) *gorm.DB {
	if len(filters) == 0 {
		return q
	}
	return q.Where(map[string]any(filters))
}

func (r *Repository[T]) notFound(format string, args ...any) error {
	return errs.NotFound(r.opts.NotFoundCode, format, args...)
}

func (r *Repository[T]) fail(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.notFound("no %s found", r.opts.Entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &errs.Error{Kind: errs.KindConflict, Code: errs.CodeUniqueViolation,
			Message: r.opts.Entity + " violates a uniqueness constraint", Err: err}
	default:
		return errs.Wrap(op+" "+r.opts.Entity, err)
	}
}

// GetByID returns the row with the given primary key
func (r *Repository[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var out T
	if err := r.query(ctx).First(&out, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, r.notFound("no %s found with ID %d", r.opts.Entity, id)
		}
		return nil, r.fail("get", err)
	}
	return &out, nil
}

// GetByIDForUpdate is GetByID holding a row lock until the surrounding
// transaction ends. Dialects without row locks ignore the clause.
func (r *Repository[T]) GetByIDForUpdate(ctx context.Context, id uint) (*T, error) {
	var out T
	err := r.query(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&out, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, r.notFound("no %s found with ID %d", r.opts.Entity, id)
		}
		return nil, r.fail("get", err)
	}
	return &out, nil
}

// GetBy returns the first row matching filters
func (r *Repository[T]) GetBy(ctx context.Context, filters Filters) (*T, error) {
	var out T
	if err := where(r.query(ctx), filters).First(&out).Error; err != nil {
		return nil, r.fail("get", err)
	}
	return &out, nil
}

// FindBy is GetBy returning nil without error when nothing matches
func (r *Repository[T]) FindBy(ctx context.Context, filters Filters) (*T, error) {
	out, err := r.GetBy(ctx, filters)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, nil
	}
	return out, err
}

// GetAll returns every row ordered by id
func (r *Repository[T]) GetAll(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.query(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, r.fail("list", err)
	}
	return out, nil
}

// GetAllBy returns every row matching filters
func (r *Repository[T]) GetAllBy(ctx context.Context, filters Filters) ([]T, error) {
	var out []T
	if err := where(r.query(ctx), filters).Order("id").Find(&out).Error; err != nil {
		return nil, r.fail("list", err)
	}
	return out, nil
}

// GetAllWithCondition returns every row satisfying all conditions
func (r *Repository[T]) GetAllWithCondition(ctx context.Context, conds ...Condition) ([]T, error) {
	var out []T
	q := r.query(ctx)
	for _, c := range conds {
		q = c(q)
	}
	// Conditions may bring their own ordering
	if _, ok := q.Statement.Clauses["ORDER BY"]; !ok {
		q = q.Order("id")
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, r.fail("list", err)
	}
	return out, nil
}

// GetAllContaining returns rows whose column contains value as a substring
func (r *Repository[T]) GetAllContaining(ctx context.Context, column, value string) ([]T, error) {
	return r.GetAllWithCondition(ctx, Contains(column, value))
}

// Count returns the number of rows matching filters
func (r *Repository[T]) Count(ctx context.Context, filters Filters) (int64, error) {
	var n int64
	if err := where(r.query(ctx), filters).Count(&n).Error; err != nil {
		return 0, r.fail("count", err)
	}
	return n, nil
}

// Exists reports whether any row matches filters
func (r *Repository[T]) Exists(ctx context.Context, filters Filters) (bool, error) {
	n, err := r.Count(ctx, filters)
	return n > 0, err
}

// Create inserts entity and fills its generated fields
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return r.fail("create", err)
	}
	return nil
}

// UpdateColumns writes only the named columns of entity, zero values included
func (r *Repository[T]) UpdateColumns(ctx context.Context, entity *T, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(entity).Select(columns).Updates(entity).Error; err != nil {
		return r.fail("update", err)
	}
	return nil
}

// UpdateByID updates the given columns of one row. Callers resolve the row
// first: some drivers report zero affected rows when no value changed.
func (r *Repository[T]) UpdateByID(ctx context.Context, id uint, fields map[string]any) error {
	if err := r.query(ctx).Where("id = ?", id).Updates(fields).Error; err != nil {
		return r.fail("update", err)
	}
	return nil
}

// UpdateAllBy updates the given columns of every row matching filters and returns the affected count
func (r *Repository[T]) UpdateAllBy(ctx context.Context, filters Filters, fields map[string]any) (int64, error) {
	res := where(r.query(ctx), filters).Updates(fields)
	if res.Error != nil {
		return 0, r.fail("update", res.Error)
	}
	return res.RowsAffected, nil
}

// UpdateWithCondition updates the given columns of every row satisfying cond
func (r *Repository[T]) UpdateWithCondition(ctx context.Context, cond Condition, fields map[string]any) (int64, error) {
	res := cond(r.query(ctx)).Updates(fields)
	if res.Error != nil {
		return 0, r.fail("update", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteByID removes one row
func (r *Repository[T]) DeleteByID(ctx context.Context, id uint) error {
	res := r.query(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return r.fail("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.notFound("no %s found with ID %d", r.opts.Entity, id)
	}
	return nil
}

// DeleteWithCondition removes every row satisfying cond
func (r *Repository[T]) DeleteWithCondition(ctx context.Context, cond Condition) (int64, error) {
	res := cond(r.query(ctx)).Delete(new(T))
	if res.Error != nil {
		return 0, r.fail("delete", res.Error)
	}
	return res.RowsAffected, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Contains matches rows whose column contains value literally
func Contains(column, value string) Condition {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Expr{
			SQL:  "? LIKE ? ESCAPE '!'",
			Vars: []any{clause.Column{Name: column}, "%" + likeEscaper.Replace(value) + "%"},
		})
	}
}

// In matches rows whose column is one of values
func In[V any](column string, values []V) Condition {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" IN ?", values)
	}
}

// IsNull matches rows whose column is NULL
func IsNull(column string) Condition {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: clause.Column{Name: column}, Value: nil})
	}
}
