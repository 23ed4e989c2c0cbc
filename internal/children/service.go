package children

import (
	"context"
	"errors"
	"time"

	id "amparo/pkg/domain"
	dErrors "amparo/pkg/domain-errors"
	"amparo/pkg/platform/sentinel"
	"amparo/pkg/requestcontext"
)

// Service owns admin-facing child registry operations. Status changes driven
// by sponsorship assignment and termination happen in the ledger, not here.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, firstName, lastName string, birthDate time.Time, gender, story, imageRef string) (Child, error) {
	child, err := New(id.NewChildID(), firstName, lastName, birthDate, gender, story, imageRef, requestcontext.Now(ctx))
	if err != nil {
		return Child{}, err
	}
	if err := s.store.Save(ctx, child); err != nil {
		return Child{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save child")
	}
	return child, nil
}

func (s *Service) Get(ctx context.Context, childID id.ChildID) (Child, error) {
	child, err := s.store.FindByID(ctx, childID)
	if err != nil {
		return Child{}, wrapChildErr(err)
	}
	return child, nil
}

// ListAvailable returns children open for selection, oldest registration first.
func (s *Service) ListAvailable(ctx context.Context) ([]Child, error) {
	out, err := s.store.ListByStatus(ctx, StatusAvailable)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list children")
	}
	return out, nil
}

// Deactivate parks a child so it cannot be selected. A sponsored child must
// have its sponsorship ended first; the ledger handles that coupling.
func (s *Service) Deactivate(ctx context.Context, childID id.ChildID) error {
	child, err := s.store.FindByID(ctx, childID)
	if err != nil {
		return wrapChildErr(err)
	}
	if child.Status == StatusSponsored {
		return dErrors.New(dErrors.CodeInvalidState, "child has an active sponsorship; end it first")
	}
	if child.Status == StatusInactive {
		return nil
	}
	if err := s.store.SetStatus(ctx, childID, StatusInactive); err != nil {
		return wrapChildErr(err)
	}
	return nil
}

// Reactivate returns an inactive child to the available pool.
func (s *Service) Reactivate(ctx context.Context, childID id.ChildID) error {
	child, err := s.store.FindByID(ctx, childID)
	if err != nil {
		return wrapChildErr(err)
	}
	if child.Status != StatusInactive {
		return dErrors.New(dErrors.CodeInvalidState, "only an inactive child can be reactivated")
	}
	if err := s.store.SetStatus(ctx, childID, StatusAvailable); err != nil {
		return wrapChildErr(err)
	}
	return nil
}

func wrapChildErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "child does not exist")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "child store failure")
}
