package roadmap

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/unipilot-backend/internal/data/repos/testutil"
	types "github.com/yungbote/unipilot-backend/internal/domain"
	"github.com/yungbote/unipilot-backend/internal/platform/dbctx"
)

func TestModuleRepoListAvailableSkipsCompleted(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	sp := testutil.SeedStudyProgram(t, ctx, tx, "Informatik")
	other := testutil.SeedStudyProgram(t, ctx, tx, "BWL")
	m3 := testutil.SeedModule(t, ctx, tx, sp.ID, "Datenbanken", 3)
	m1 := testutil.SeedModule(t, ctx, tx, sp.ID, "Programmierung 1", 1)
	done := testutil.SeedModule(t, ctx, tx, sp.ID, "Mathe 1", 1)
	testutil.SeedModule(t, ctx, tx, other.ID, "Marketing", 1)

	repo := NewModuleRepo(db, testutil.Logger(t))
	now := time.Now().UTC()
	if err := repo.UpsertProgress(dbc, &types.UserModuleProgress{UserID: 5, ModuleID: done.ID, Completed: true, CompletedAt: &now}); err != nil {
		t.Fatalf("UpsertProgress: %v", err)
	}
	// in progress, still available
	if err := repo.UpsertProgress(dbc, &types.UserModuleProgress{UserID: 5, ModuleID: m3.ID}); err != nil {
		t.Fatalf("UpsertProgress (open): %v", err)
	}

	got, err := repo.ListAvailable(dbc, sp.ID, 5)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}
	if len(got) != 2 || got[0].ID != m1.ID || got[1].ID != m3.ID {
		t.Fatalf("ListAvailable: unexpected result: %+v", got)
	}

	all, err := repo.ListAvailable(dbc, sp.ID, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListAvailable (anonymous): n=%d err=%v", len(all), err)
	}
}

func TestCareerNodeRepoLinkTopicFieldOnce(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	sp := testutil.SeedStudyProgram(t, ctx, tx, "Informatik")
	job := testutil.SeedJob(t, ctx, tx, sp.ID, "Data Engineer", true)
	tf1 := testutil.SeedTopicField(t, ctx, tx, "Roadmap für Data Engineer")
	tf2 := testutil.SeedTopicField(t, ctx, tx, "Roadmap für Data Engineer (2)")

	repo := NewCareerNodeRepo(db, testutil.Logger(t))
	linked, err := repo.LinkTopicField(dbc, job.ID, tf1.ID)
	if err != nil || !linked {
		t.Fatalf("LinkTopicField: linked=%v err=%v", linked, err)
	}
	linked, err = repo.LinkTopicField(dbc, job.ID, tf2.ID)
	if err != nil || linked {
		t.Fatalf("LinkTopicField (second): linked=%v err=%v", linked, err)
	}

	got, err := repo.GetByID(dbc, job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TopicFieldID == nil || *got.TopicFieldID != tf1.ID {
		t.Fatalf("GetByID: expected topic field %d, got %+v", tf1.ID, got.TopicFieldID)
	}
}

func TestUserProfileRepoUpsert(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewUserProfileRepo(db, testutil.Logger(t))
	sem := 2
	if err := repo.Upsert(dbc, &types.UserProfile{UserID: 11, CurrentSemester: &sem}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	sem = 3
	if err := repo.Upsert(dbc, &types.UserProfile{UserID: 11, CurrentSemester: &sem, Skills: "Go"}); err != nil {
		t.Fatalf("Upsert (update): %v", err)
	}

	got, err := repo.GetByUserID(dbc, 11)
	if err != nil {
		t.Fatalf("GetByUserID: %v", err)
	}
	if got == nil || got.CurrentSemester == nil || *got.CurrentSemester != 3 || got.Skills != "Go" {
		t.Fatalf("GetByUserID: unexpected result: %+v", got)
	}

	missing, err := repo.GetByUserID(dbc, 12)
	if err != nil || missing != nil {
		t.Fatalf("GetByUserID (missing): got %+v err=%v", missing, err)
	}
}
