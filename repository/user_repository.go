package repository

import (
	"context"
	"fmt"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"

	"gorm.io/gorm"
)

// UserRepository covers users and their group membership.
type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// FindByID loads a user with groups.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	if err := r.DB.WithContext(ctx).Preload("Groups").First(&user, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user %d", id))
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := r.DB.WithContext(ctx).Preload("Groups").
		Where("username = ?", username).
		First(&user).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("user %q", username))
	}
	return &user, nil
}

// Create inserts a user without touching groups. A taken username is a
// ConstraintViolation.
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	if err := r.DB.WithContext(ctx).Omit("Groups").Create(user).Error; err != nil {
		return translate(err, fmt.Sprintf("user %q", user.Username))
	}
	return nil
}

func (r *UserRepository) findGroup(tx *gorm.DB, name string) (*entity.Group, error) {
	var g entity.Group
	if err := tx.Where("name = ?", name).First(&g).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("group %q", name))
	}
	return &g, nil
}

// ListByGroup returns the members of the named group ordered by id.
func (r *UserRepository) ListByGroup(ctx context.Context, group string) ([]entity.User, error) {
	db := r.DB.WithContext(ctx)
	g, err := r.findGroup(db, group)
	if err != nil {
		return nil, err
	}
	var users []entity.User
	if err := db.Model(g).Order("users.id ASC").Association("Users").Find(&users); err != nil {
		return nil, translate(err, "group members")
	}
	return users, nil
}

// AddToGroup makes user a member of group. Adding an existing member is a
// no-op.
func (r *UserRepository) AddToGroup(ctx context.Context, userID uint, group string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := r.findGroup(tx, group)
		if err != nil {
			return err
		}
		var user entity.User
		if err := tx.First(&user, userID).Error; err != nil {
			return translate(err, fmt.Sprintf("user %d", userID))
		}
		if err := tx.Model(&user).Association("Groups").Append(g); err != nil {
			return translate(err, "group membership")
		}
		return nil
	})
}

// RemoveFromGroup drops user from group. A user that is not a member is
// NotFound.
func (r *UserRepository) RemoveFromGroup(ctx context.Context, userID uint, group string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := r.findGroup(tx, group)
		if err != nil {
			return err
		}
		res := tx.Exec("DELETE FROM user_groups WHERE user_id = ? AND group_id = ?", userID, g.ID)
		if res.Error != nil {
			return translate(res.Error, "group membership")
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: user %d is not in %s", apperr.ErrNotFound, userID, group)
		}
		return nil
	})
}

// IsInGroup reports whether the user belongs to the named group.
func (r *UserRepository) IsInGroup(tx *gorm.DB, userID uint, group string) (bool, error) {
	var n int64
	err := tx.Table("user_groups").
		Joins(`JOIN "groups" ON "groups".id = user_groups.group_id`).
		Where(`user_groups.user_id = ? AND "groups".name = ?`, userID, group).
		Count(&n).Error
	if err != nil {
		return false, translate(err, "group membership")
	}
	return n > 0, nil
}
