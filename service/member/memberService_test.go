// service/member/member_service_test.go
package membersvc_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"github.com/vijender883/bookyard/model"
	membersvc "github.com/vijender883/bookyard/service/member"
)

// memRepo backs the tests with real map state.
type memRepo struct {
	members map[uuid.UUID]*model.Member
	inserts int
}

func newMemRepo() *memRepo { return &memRepo{members: map[uuid.UUID]*model.Member{}} }

func (r *memRepo) Upsert(ctx context.Context, m *model.Member) (bool, error) {
	if _, ok := r.members[m.ID]; ok {
		return false, nil
	}
	cp := *m
	r.members[m.ID] = &cp
	r.inserts++
	return true, nil
}

func (r *memRepo) ByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	m, ok := r.members[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *m
	return &cp, nil
}

func (r *memRepo) SetGuardian(ctx context.Context, memberID uuid.UUID, guardianID *uuid.UUID) error {
	m, ok := r.members[memberID]
	if !ok {
		return sql.ErrNoRows
	}
	m.ParentID = guardianID
	return nil
}

func TestEnsure_Idempotent(t *testing.T) {
	r := newMemRepo()
	s := membersvc.New(r)
	id := membersvc.Identity{ID: uuid.New(), Username: "sam", Email: "sam@example.com"}

	first, err := s.Ensure(context.Background(), id)
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	second, err := s.Ensure(context.Background(), id)
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	if r.inserts != 1 {
		t.Fatalf("inserts = %d; want exactly 1", r.inserts)
	}
	if first.ID != second.ID || first.Username != second.Username {
		t.Fatalf("ensure not stable: %v vs %v", first, second)
	}
}

func TestEnsure_UsernameFallsBackToEmail(t *testing.T) {
	r := newMemRepo()
	s := membersvc.New(r)

	m, err := s.Ensure(context.Background(), membersvc.Identity{ID: uuid.New(), Email: "lena@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if m.Username != "lena" {
		t.Fatalf("username = %q; want email local part %q", m.Username, "lena")
	}
}

func TestSetGuardian_RequiresParentRole(t *testing.T) {
	r := newMemRepo()
	s := membersvc.New(r)

	kidGuardian, _ := s.Ensure(context.Background(), membersvc.Identity{ID: uuid.New(), Username: "kiddo"})
	r.members[kidGuardian.ID].Role = model.RoleKid
	member, _ := s.Ensure(context.Background(), membersvc.Identity{ID: uuid.New(), Username: "junior"})

	err := s.SetGuardian(context.Background(), member.ID, &kidGuardian.ID)
	if err != membersvc.ErrGuardianNotParent {
		t.Fatalf("err = %v; want ErrGuardianNotParent", err)
	}
}

func TestSetGuardian_LinksAndClears(t *testing.T) {
	r := newMemRepo()
	s := membersvc.New(r)

	guardian, _ := s.Ensure(context.Background(), membersvc.Identity{ID: uuid.New(), Username: "mom"})
	member, _ := s.Ensure(context.Background(), membersvc.Identity{ID: uuid.New(), Username: "junior"})

	if err := s.SetGuardian(context.Background(), member.ID, &guardian.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(context.Background(), member.ID)
	if got.ParentID == nil || *got.ParentID != guardian.ID {
		t.Fatalf("parent_id = %v; want %v", got.ParentID, guardian.ID)
	}

	if err := s.SetGuardian(context.Background(), member.ID, nil); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get(context.Background(), member.ID)
	if got.ParentID != nil {
		t.Fatalf("parent_id = %v; want cleared", got.ParentID)
	}
}

func TestSetGuardian_UnknownGuardian(t *testing.T) {
	r := newMemRepo()
	s := membersvc.New(r)
	member, _ := s.Ensure(context.Background(), membersvc.Identity{ID: uuid.New(), Username: "solo"})

	missing := uuid.New()
	if err := s.SetGuardian(context.Background(), member.ID, &missing); err != membersvc.ErrNotFound {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}
