package membersvc

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/vijender883/bookyard/model"
	memberrepo "github.com/vijender883/bookyard/repository/member"
)

var (
	ErrNotFound          = errors.New("member not found")
	ErrGuardianNotParent = errors.New("guardian must have the parent role")
	ErrUsernameTaken     = memberrepo.ErrUsernameTaken
)

// Identity is what the external auth provider tells us about a caller.
type Identity struct {
	ID       uuid.UUID
	Username string
	Email    string
	FullName string
}

type Service interface {
	// Ensure materializes exactly one member for an identity. Calling
	// it again for a provisioned identity is a no-op.
	Ensure(ctx context.Context, id Identity) (*model.Member, error)

	Get(ctx context.Context, memberID uuid.UUID) (*model.Member, error)

	// SetGuardian links a member to a guardian; the guardian must hold
	// the parent role. A nil guardianID clears the link.
	SetGuardian(ctx context.Context, memberID uuid.UUID, guardianID *uuid.UUID) error
}

type service struct{ r memberrepo.Repo }

func New(r memberrepo.Repo) Service { return &service{r: r} }

func (s *service) Ensure(ctx context.Context, id Identity) (*model.Member, error) {
	m := &model.Member{
		ID:       id.ID,
		Username: usernameFor(id),
		Role:     model.RoleParent,
	}
	if id.FullName != "" {
		m.FullName = &id.FullName
	}
	if _, err := s.r.Upsert(ctx, m); err != nil {
		return nil, err
	}
	return s.Get(ctx, id.ID)
}

// usernameFor falls back to the email local part when the provider
// sends no username.
func usernameFor(id Identity) string {
	if id.Username != "" {
		return id.Username
	}
	if at := strings.IndexByte(id.Email, '@'); at > 0 {
		return id.Email[:at]
	}
	return id.ID.String()
}

func (s *service) Get(ctx context.Context, memberID uuid.UUID) (*model.Member, error) {
	m, err := s.r.ByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (s *service) SetGuardian(ctx context.Context, memberID uuid.UUID, guardianID *uuid.UUID) error {
	if guardianID != nil {
		g, err := s.Get(ctx, *guardianID)
		if err != nil {
			return err
		}
		if g.Role != model.RoleParent {
			return ErrGuardianNotParent
		}
	}
	if err := s.r.SetGuardian(ctx, memberID, guardianID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
