// Package registry maps secret codes to stored media records
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitwise74/codedrop/internal/model"
	"bitwise74/codedrop/pkg/validators"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCodeCollision = errors.New("code is already taken")
	ErrNotFound      = errors.New("media not found")
)

type MediaInput struct {
	Code     string
	OwnerID  int64
	FileID   string
	FileType model.MediaKind
	Format   string
	FileName string
	Caption  string
}

type Registry struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Registry {
	return &Registry{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock replaces the time source, tests use it to age records
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Register stores a new record under in.Code. The insert itself is the
// uniqueness check, so two racing registrations of one code can't both win.
func (r *Registry) Register(ctx context.Context, in MediaInput) (*model.Media, error) {
	m := &model.Media{
		Code:      validators.NormalizeCode(in.Code),
		OwnerID:   in.OwnerID,
		FileID:    in.FileID,
		FileType:  in.FileType,
		Format:    in.Format,
		FileName:  in.FileName,
		Caption:   in.Caption,
		Views:     0,
		CreatedAt: r.now(),
	}

	if m.Code == "" {
		return nil, validators.ErrCodeEmpty
	}

	if !m.FileType.Valid() {
		return nil, fmt.Errorf("unknown media kind %q", m.FileType)
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrCodeCollision
		}

		return nil, fmt.Errorf("failed to insert media, %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return nil, ErrCodeCollision
	}

	return m, nil
}

func (r *Registry) Lookup(ctx context.Context, code string) (*model.Media, error) {
	var m model.Media

	err := r.db.WithContext(ctx).
		Where("code = ?", validators.NormalizeCode(code)).
		First(&m).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to look up media, %w", err)
	}

	return &m, nil
}

// IsAvailable only exists so the bot can tell an admin early that a code is
// taken. Register still has the final word.
func (r *Registry) IsAvailable(ctx context.Context, code string) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(model.Media{}).
		Where("code = ?", validators.NormalizeCode(code)).
		Count(&count).
		Error
	if err != nil {
		return false, fmt.Errorf("failed to check code availability, %w", err)
	}

	return count == 0, nil
}

func (r *Registry) IncrementView(ctx context.Context, code string) error {
	res := r.db.WithContext(ctx).
		Model(model.Media{}).
		Where("code = ?", validators.NormalizeCode(code)).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("failed to increment views, %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete returns how many records were removed, deleting a missing code is
// not an error
func (r *Registry) Delete(ctx context.Context, code string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("code = ?", validators.NormalizeCode(code)).
		Delete(model.Media{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete media, %w", res.Error)
	}

	return res.RowsAffected, nil
}

// ExpireOlderThan drops every record created before now-retention. Records
// created exactly at the cutoff are kept.
func (r *Registry) ExpireOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := r.now().Add(-retention)

	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(model.Media{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to expire media, %w", res.Error)
	}

	return res.RowsAffected, nil
}

func (r *Registry) ListRecent(ctx context.Context, limit int) ([]model.Media, error) {
	return r.list(ctx, "created_at desc", limit)
}

func (r *Registry) TopByViews(ctx context.Context, limit int) ([]model.Media, error) {
	return r.list(ctx, "views desc, created_at desc", limit)
}

func (r *Registry) Count(ctx context.Context) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Model(model.Media{}).
		Count(&count).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to count media, %w", err)
	}

	return count, nil
}

func (r *Registry) list(ctx context.Context, order string, limit int) ([]model.Media, error) {
	if limit <= 0 {
		return []model.Media{}, nil
	}

	var entries []model.Media

	err := r.db.WithContext(ctx).
		Order(order).
		Limit(limit).
		Find(&entries).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list media, %w", err)
	}

	return entries, nil
}
