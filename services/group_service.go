package services

import (
	"context"
	"fmt"
	"strings"

	"littlelemon/entity"
	"littlelemon/pkg/apperr"
	"littlelemon/policy"
	"littlelemon/repository"
)

// GroupService administers membership of the staff groups.
type GroupService struct {
	Users *repository.UserRepository
}

func NewGroupService(users *repository.UserRepository) *GroupService {
	return &GroupService{Users: users}
}

// AddMemberIn names the user by id or by username.
type AddMemberIn struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func staffGroup(group string) error {
	switch group {
	case policy.GroupManager, policy.GroupDeliveryCrew:
		return nil
	default:
		return fmt.Errorf("%w: group %q", apperr.ErrNotFound, group)
	}
}

func (s *GroupService) List(ctx context.Context, id policy.Identity, group string) ([]entity.User, error) {
	if err := policy.Decide(id, policy.RolesManage); err != nil {
		return nil, err
	}
	if err := staffGroup(group); err != nil {
		return nil, err
	}
	return s.Users.ListByGroup(ctx, group)
}

// Add puts the user in group. Adding an existing member succeeds.
func (s *GroupService) Add(ctx context.Context, id policy.Identity, group string, in AddMemberIn) (*entity.User, error) {
	if err := policy.Decide(id, policy.RolesManage); err != nil {
		return nil, err
	}
	if err := staffGroup(group); err != nil {
		return nil, err
	}

	var (
		user *entity.User
		err  error
	)
	switch {
	case in.ID != 0:
		user, err = s.Users.FindByID(ctx, in.ID)
	case strings.TrimSpace(in.Username) != "":
		user, err = s.Users.FindByUsername(ctx, strings.TrimSpace(in.Username))
	default:
		return nil, fmt.Errorf("%w: id or username is required", apperr.ErrConstraintViolation)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Users.AddToGroup(ctx, user.ID, group); err != nil {
		return nil, err
	}
	return user, nil
}

// Remove takes the user out of group. A user that is not a member is
// NotFound.
func (s *GroupService) Remove(ctx context.Context, id policy.Identity, group string, userID uint) error {
	if err := policy.Decide(id, policy.RolesManage); err != nil {
		return err
	}
	if err := staffGroup(group); err != nil {
		return err
	}
	if _, err := s.Users.FindByID(ctx, userID); err != nil {
		return err
	}
	return s.Users.RemoveFromGroup(ctx, userID, group)
}
