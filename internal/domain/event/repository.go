package event

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"eventadmin/internal/metrics"
)

// Store is the gateway to persisted events. Absence is never an error for
// reads and deletes; infrastructure failures surface as *StoreError.
type Store interface {
	List(ctx context.Context) ([]Event, error)
	GetByID(ctx context.Context, id string) (*Event, error)
	Create(ctx context.Context, f Fields) (*Event, error)
	Update(ctx context.Context, id string, p Patch) (*Event, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Invalidator drops any cached copy of the event listing.
type Invalidator interface {
	InvalidateListing(ctx context.Context) error
}

type repository struct {
	db    *gorm.DB
	cache Invalidator
	log   logrus.FieldLogger
}

func NewRepository(db *gorm.DB, cache Invalidator, log logrus.FieldLogger) Store {
	return &repository{db: db, cache: cache, log: log}
}

func (r *repository) List(ctx context.Context) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).Order("created_at ASC").Order("id ASC").Find(&events).Error
	if err != nil {
		return nil, r.fail("list", "", err)
	}
	metrics.RecordStoreOp("list", "ok")
	return events, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Event, error) {
	if !validID(id) {
		metrics.RecordStoreOp("get", "not_found")
		return nil, nil
	}

	var e Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.RecordStoreOp("get", "not_found")
		return nil, nil
	}
	if err != nil {
		return nil, r.fail("get", id, err)
	}
	metrics.RecordStoreOp("get", "ok")
	return &e, nil
}

func (r *repository) Create(ctx context.Context, f Fields) (*Event, error) {
	e := &Event{ID: uuid.NewString(), Fields: f}
	e.Guest = normalizeGuest(f.Guest)
	e.ImageURLs = append([]string(nil), f.ImageURLs...)

	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, r.fail("create", e.ID, err)
	}
	metrics.RecordStoreOp("create", "ok")
	r.log.WithField("id", e.ID).Info("event created")

	r.invalidate(ctx, "create")
	return e, nil
}

func (r *repository) Update(ctx context.Context, id string, p Patch) (*Event, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		metrics.RecordStoreOp("update", "not_found")
		return nil, r.fail("update", id, ErrEventNotFound)
	}

	p.Apply(&current.Fields)

	res := r.db.WithContext(ctx).
		Model(&Event{ID: id}).
		Select("*").
		Omit("id", "created_at").
		Updates(current)
	if res.Error != nil {
		return nil, r.fail("update", id, res.Error)
	}
	if res.RowsAffected == 0 {
		// removed between the read and the write
		metrics.RecordStoreOp("update", "not_found")
		return nil, r.fail("update", id, ErrEventNotFound)
	}

	var updated Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&updated).Error; err != nil {
		return nil, r.fail("update", id, err)
	}
	metrics.RecordStoreOp("update", "ok")
	r.log.WithField("id", id).Info("event updated")

	r.invalidate(ctx, "update")
	return &updated, nil
}

func (r *repository) Delete(ctx context.Context, id string) (bool, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		metrics.RecordStoreOp("delete", "not_found")
		return false, nil
	}

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Event{})
	if res.Error != nil {
		return false, r.fail("delete", id, res.Error)
	}
	if res.RowsAffected == 0 {
		metrics.RecordStoreOp("delete", "not_found")
		return false, nil
	}
	metrics.RecordStoreOp("delete", "ok")
	r.log.WithField("id", id).Info("event deleted")

	r.invalidate(ctx, "delete")
	return true, nil
}

func (r *repository) fail(op, id string, err error) error {
	if !errors.Is(err, ErrEventNotFound) {
		metrics.RecordStoreOp(op, "error")
	}
	r.log.WithFields(logrus.Fields{
		"op":    op,
		"id":    id,
		"error": err,
	}).Error("event store operation failed")
	return &StoreError{Op: op, ID: id, Err: err}
}

func (r *repository) invalidate(ctx context.Context, op string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.InvalidateListing(ctx); err != nil {
		r.log.WithFields(logrus.Fields{
			"op":    op,
			"error": err,
		}).Warn("listing cache invalidation failed")
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
