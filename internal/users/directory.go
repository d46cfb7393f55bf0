// Package users keeps track of everyone who talked to the bot so broadcasts
// have someone to go to
package users

import (
	"context"
	"fmt"
	"time"

	"bitwise74/codedrop/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Directory struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Directory {
	return &Directory{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (d *Directory) WithClock(now func() time.Time) *Directory {
	d.now = now
	return d
}

// Upsert inserts the user or refreshes their display names. last_active is
// always bumped, joined_at is left alone on existing rows.
func (d *Directory) Upsert(ctx context.Context, u model.User) error {
	now := d.now()
	u.JoinedAt = now
	u.LastActive = now

	err := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "last_name", "last_active"}),
		}).
		Create(&u).
		Error
	if err != nil {
		return fmt.Errorf("failed to upsert user, %w", err)
	}

	return nil
}

// AllUserIDs loads every id at once, there's no pagination
func (d *Directory) AllUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64

	err := d.db.WithContext(ctx).
		Model(model.User{}).
		Order("user_id").
		Pluck("user_id", &ids).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user ids, %w", err)
	}

	return ids, nil
}

func (d *Directory) Get(ctx context.Context, userID int64) (*model.User, error) {
	var u model.User

	err := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&u).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to load user, %w", err)
	}

	return &u, nil
}

func (d *Directory) Count(ctx context.Context) (int64, error) {
	var count int64

	err := d.db.WithContext(ctx).
		Model(model.User{}).
		Count(&count).
		Error
	if err != nil {
		return 0, fmt.Errorf("failed to count users, %w", err)
	}

	return count, nil
}
