package matches

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/openleague/matchday/internal/auth"
	dbpkg "github.com/openleague/matchday/internal/db"
	"github.com/openleague/matchday/internal/fault"
	"github.com/openleague/matchday/internal/teams"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	g, err := dbpkg.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := dbpkg.Migrate(g); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return g
}

func setup(t *testing.T) (*Service, int64, CreateInput) {
	t.Helper()
	ctx := context.Background()
	db := newTestDB(t)
	ts := teams.NewService(db)
	svc := NewService(db, ts)

	u := auth.User{Email: "coach@example.com", PasswordHash: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	home, err := ts.Create(ctx, "Home FC")
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	away, err := ts.Create(ctx, "Away FC")
	if err != nil {
		t.Fatalf("away: %v", err)
	}
	if _, err := ts.AddMember(ctx, home.ID, u.ID, teams.RoleManager); err != nil {
		t.Fatalf("member: %v", err)
	}
	return svc, u.ID, CreateInput{HomeTeamID: home.ID, AwayTeamID: away.ID}
}

func TestCreate_Defaults(t *testing.T) {
	svc, actor, in := setup(t)
	m, err := svc.Create(context.Background(), actor, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.Status != StatusScheduled {
		t.Fatalf("status = %s, want scheduled", m.Status)
	}
	if m.Kind != KindLeague || m.HalfLengthMin != 45 {
		t.Fatalf("defaults not applied: %+v", m)
	}
	if m.HomeScore != 0 || m.AwayScore != 0 {
		t.Fatalf("fresh match must be 0-0, got %d-%d", m.HomeScore, m.AwayScore)
	}
}

func TestCreate_SameTeams_Validation(t *testing.T) {
	svc, actor, in := setup(t)
	in.AwayTeamID = in.HomeTeamID
	_, err := svc.Create(context.Background(), actor, in)
	var ve *fault.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreate_NoManagementRights_Permission(t *testing.T) {
	svc, _, in := setup(t)
	// Actor 999 has no membership anywhere.
	_, err := svc.Create(context.Background(), 999, in)
	var pe *fault.PermissionError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PermissionError, got %v", err)
	}
}

func TestLifecycle_Flow(t *testing.T) {
	svc, actor, in := setup(t)
	ctx := context.Background()
	m, err := svc.Create(ctx, actor, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	m, err = svc.Start(ctx, actor, m.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if m.Status != StatusLive {
		t.Fatalf("status = %s, want live", m.Status)
	}

	// Starting twice is illegal.
	_, err = svc.Start(ctx, actor, m.ID)
	var se *fault.StateError
	if !errors.As(err, &se) {
		t.Fatalf("expected StateError on double start, got %v", err)
	}

	// Finishing needs explicit confirmation.
	_, err = svc.Finish(ctx, actor, m.ID, false)
	var ve *fault.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError without confirm, got %v", err)
	}

	m, err = svc.Finish(ctx, actor, m.ID, true)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if m.Status != StatusFinished {
		t.Fatalf("status = %s, want finished", m.Status)
	}

	// No un-finish, no cancel after finish.
	if _, err = svc.Cancel(ctx, actor, m.ID); !errors.As(err, &se) {
		t.Fatalf("expected StateError cancelling finished match, got %v", err)
	}
}

func TestCancel_FromScheduled(t *testing.T) {
	svc, actor, in := setup(t)
	ctx := context.Background()
	m, err := svc.Create(ctx, actor, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	m, err = svc.Cancel(ctx, actor, m.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if m.Status != StatusCancelled {
		t.Fatalf("status = %s, want cancelled", m.Status)
	}
	// Terminal: cannot start a cancelled match.
	_, err = svc.Start(ctx, actor, m.ID)
	var se *fault.StateError
	if !errors.As(err, &se) {
		t.Fatalf("expected StateError, got %v", err)
	}
}

func TestStart_UnknownMatch_NotFound(t *testing.T) {
	svc, actor, _ := setup(t)
	_, err := svc.Start(context.Background(), actor, 4242)
	var nf *fault.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
