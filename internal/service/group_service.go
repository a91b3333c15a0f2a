package service

import (
	"context"
	"log/slog"

	"github.com/LuvaSoftEC/yopago/internal/apperr"
	"github.com/LuvaSoftEC/yopago/internal/events"
	"github.com/LuvaSoftEC/yopago/internal/models"
	"github.com/LuvaSoftEC/yopago/internal/storage"
)

// Resplitter re-splits every expense in a group equally across its current
// members. GroupService calls it when a membership change should rewrite
// history.
type Resplitter interface {
	Resplit(ctx context.Context, groupID string) error
}

// GroupService manages groups and their membership. Membership changes can
// optionally be applied to history: past expenses are then re-split equally
// across the new member set.
type GroupService struct {
	store      storage.Store
	publisher  events.Publisher
	resplitter Resplitter
}

// NewGroupService creates a GroupService. The resplitter may be nil, in
// which case applyToHistory requests are rejected.
func NewGroupService(store storage.Store, publisher events.Publisher, resplitter Resplitter) *GroupService {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &GroupService{store: store, publisher: publisher, resplitter: resplitter}
}

// CreateGroup creates a group with an optional initial member list.
func (s *GroupService) CreateGroup(ctx context.Context, name string, members []string) (*models.Group, error) {
	if name == "" {
		return nil, apperr.Validation("group name is required")
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if m == "" {
			return nil, apperr.Validation("member id cannot be empty")
		}
		if seen[m] {
			return nil, apperr.Validation("duplicate member %s", m)
		}
		seen[m] = true
	}

	group := &models.Group{Name: name, Members: members}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "name", name, "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "name", group.Name, "members", len(group.Members))
	s.publisher.Publish(events.New(events.TypeGroupCreated, group.ID, map[string]any{
		"name":    group.Name,
		"members": len(group.Members),
	}))
	return group, nil
}

// GetGroup retrieves a group with its member list in join order.
func (s *GroupService) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return s.store.GetGroup(ctx, groupID)
}

// DeleteGroup removes a group and everything under it: expenses, shares,
// items, payments and the ledger cache.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID string) error {
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	slog.Info("Group deleted", "group_id", groupID)
	s.publisher.Publish(events.New(events.TypeGroupDeleted, groupID, nil))
	return nil
}

// AddMember adds a member to a group. With applyToHistory set, every
// existing expense is re-split equally so the newcomer shares past costs.
func (s *GroupService) AddMember(ctx context.Context, groupID, memberID string, applyToHistory bool) error {
	if memberID == "" {
		return apperr.Validation("member id cannot be empty")
	}
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.HasMember(memberID) {
		return apperr.Conflict("member %s already belongs to group %s", memberID, groupID)
	}

	if err := s.store.AddMember(ctx, groupID, memberID); err != nil {
		slog.Error("AddMember failed", "group_id", groupID, "member_id", memberID, "error", err)
		return err
	}

	slog.Info("Member joined", "group_id", groupID, "member_id", memberID, "apply_to_history", applyToHistory)
	s.publisher.Publish(events.NewMember(events.TypeMemberJoined, groupID, memberID, nil))

	if applyToHistory {
		return s.resplit(ctx, groupID)
	}
	return nil
}

// RemoveMember removes a member from a group. With applyToHistory set, the
// remaining members absorb the leaver's past shares via an equal re-split;
// without it, history keeps the leaver's shares and the settlement simply
// stops reporting them.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, memberID string, applyToHistory bool) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(memberID) {
		return apperr.NotFound("member %s not found in group %s", memberID, groupID)
	}

	if err := s.store.RemoveMember(ctx, groupID, memberID); err != nil {
		slog.Error("RemoveMember failed", "group_id", groupID, "member_id", memberID, "error", err)
		return err
	}

	slog.Info("Member removed", "group_id", groupID, "member_id", memberID, "apply_to_history", applyToHistory)
	s.publisher.Publish(events.NewMember(events.TypeMemberRemoved, groupID, memberID, nil))

	if applyToHistory {
		return s.resplit(ctx, groupID)
	}
	return nil
}

func (s *GroupService) resplit(ctx context.Context, groupID string) error {
	if s.resplitter == nil {
		return apperr.Validation("re-splitting history is not available")
	}
	return s.resplitter.Resplit(ctx, groupID)
}
