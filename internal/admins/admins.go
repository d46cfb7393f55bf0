// Package admins answers who may use the admin surface of the bot.
//
// There are two sources: the static list from the config and the admins
// table filled at runtime. The table only ever adds to the static list, a
// configured admin can't be removed through the bot.
package admins

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"bitwise74/codedrop/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrStaticAdmin = errors.New("admin is configured statically")
	ErrInvalidID   = errors.New("invalid user id")
)

type Directory struct {
	db     *gorm.DB
	static []int64
}

func New(db *gorm.DB, static []int64) *Directory {
	return &Directory{db: db, static: slices.Clone(static)}
}

func (d *Directory) IsStatic(userID int64) bool {
	return slices.Contains(d.static, userID)
}

// IsAdmin fails closed, a database error means no admin rights
func (d *Directory) IsAdmin(ctx context.Context, userID int64) bool {
	if d.IsStatic(userID) {
		return true
	}

	var count int64

	err := d.db.WithContext(ctx).
		Model(model.Admin{}).
		Where("user_id = ?", userID).
		Count(&count).
		Error
	if err != nil {
		zap.L().Error("Failed to check admin table", zap.Int64("user_id", userID), zap.Error(err))
		return false
	}

	return count > 0
}

func (d *Directory) Add(ctx context.Context, userID, addedBy int64) error {
	if userID <= 0 {
		return ErrInvalidID
	}

	if d.IsStatic(userID) {
		return nil
	}

	err := d.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Admin{UserID: userID, AddedBy: addedBy}).
		Error
	if err != nil {
		return fmt.Errorf("failed to add admin, %w", err)
	}

	return nil
}

func (d *Directory) Remove(ctx context.Context, userID int64) (int64, error) {
	if d.IsStatic(userID) {
		return 0, ErrStaticAdmin
	}

	res := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(model.Admin{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to remove admin, %w", res.Error)
	}

	return res.RowsAffected, nil
}

// List returns static admins first, then the stored ones
func (d *Directory) List(ctx context.Context) ([]int64, error) {
	var stored []int64

	err := d.db.WithContext(ctx).
		Model(model.Admin{}).
		Order("added_at").
		Pluck("user_id", &stored).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list admins, %w", err)
	}

	ids := slices.Clone(d.static)
	for _, id := range stored {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}

	return ids, nil
}
