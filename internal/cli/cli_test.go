package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/unipilot-backend/internal/data/repos"
	"github.com/yungbote/unipilot-backend/internal/data/repos/testutil"
	"github.com/yungbote/unipilot-backend/internal/modules/roadmap"
)

const rawRoadmap = "```json\n" + `{"name":"Backend Path","items":[
 {"id":1,"item_type":"COURSE","title":"Intro","semester":1,"level":0},
 {"id":2,"item_type":"SKILL","title":"Go","semester":2,"level":1,"parent_id":1},
 {"id":3,"item_type":"CAREER","title":"Backend Engineer","semester":3,"level":2,"parent_id":2,"is_leaf":true,"is_career_goal":true}
]}` + "\n```"

func newTestApp(t *testing.T) (*App, uint) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	tf := testutil.SeedTopicField(t, context.Background(), db, "Backend")
	svc := roadmap.NewService(roadmap.ServiceDeps{
		DB:            db,
		Log:           log,
		Roadmaps:      repos.NewRoadmapRepo(db, log),
		Items:         repos.NewRoadmapItemRepo(db, log),
		TopicFields:   repos.NewTopicFieldRepo(db, log),
		Jobs:          repos.NewCareerNodeRepo(db, log),
		StudyPrograms: repos.NewStudyProgramRepo(db, log),
		Modules:       repos.NewModuleRepo(db, log),
		Profiles:      repos.NewUserProfileRepo(db, log),
		Progress:      repos.NewUserRoadmapItemRepo(db, log),
	})
	return &App{Roadmaps: svc, JWTSecret: "secret"}, tf.ID
}

func execute(t *testing.T, app *App, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestIngestThenTree(t *testing.T) {
	app, tfID := newTestApp(t)
	path := filepath.Join(t.TempDir(), "raw.txt")
	require.NoError(t, os.WriteFile(path, []byte(rawRoadmap), 0o600))
	id := strconv.FormatUint(uint64(tfID), 10)

	out, err := execute(t, app, "", "ingest", "--topic-field", id, "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, `created roadmap`)
	assert.Contains(t, out, `"Backend Path" with 3 items`)

	out, err = execute(t, app, rawRoadmap, "ingest", "--topic-field", id, "--file", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "reused existing roadmap")

	out, err = execute(t, app, "", "tree", "--topic-field", id)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"- [COURSE] Intro (semester 1)",
		"  - [SKILL] Go (semester 2)",
		"    - [CAREER] Backend Engineer (semester 3) *",
	}, strings.Split(strings.TrimSpace(out), "\n")[1:])

	out, err = execute(t, app, "", "tree", "--topic-field", id, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"roots"`)
}

func TestTreeMissingRoadmap(t *testing.T) {
	app, _ := newTestApp(t)
	_, err := execute(t, app, "", "tree", "--topic-field", "999")
	assert.ErrorIs(t, err, roadmap.ErrNotFound)
}

func TestIngestRequiresFlags(t *testing.T) {
	app, _ := newTestApp(t)
	_, err := execute(t, app, "", "ingest", "--file", "x.json")
	assert.Error(t, err)
}

func TestMigrateAndToken(t *testing.T) {
	calls := 0
	app := &App{JWTSecret: "secret", Migrate: func() error { calls++; return nil }}
	out, err := execute(t, app, "", "migrate")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Contains(t, out, "schema up to date")

	app.Migrate = func() error { return errors.New("locked") }
	_, err = execute(t, app, "", "migrate")
	assert.EqualError(t, err, "locked")

	out, err = execute(t, app, "", "token", "--user", "42")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(strings.TrimSpace(out), "."))
}
