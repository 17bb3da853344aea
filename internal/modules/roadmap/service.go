package roadmap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/unipilot-backend/internal/data/repos"
	types "github.com/yungbote/unipilot-backend/internal/domain"
	"github.com/yungbote/unipilot-backend/internal/observability"
	"github.com/yungbote/unipilot-backend/internal/platform/apierr"
	"github.com/yungbote/unipilot-backend/internal/platform/dbctx"
	"github.com/yungbote/unipilot-backend/internal/platform/keylock"
	"github.com/yungbote/unipilot-backend/internal/platform/llm"
	"github.com/yungbote/unipilot-backend/internal/platform/logger"
)

type Config struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
	// GenerateTimeout bounds one get-or-generate run, generation and
	// ingestion together.
	GenerateTimeout time.Duration
	ParentPolicy    ParentPolicy
}

type ServiceDeps struct {
	DB        *gorm.DB
	Log       *logger.Logger
	Generator llm.Generator
	// Locker guards roadmap creation per target. Defaults to an in-process lock.
	Locker keylock.Locker
	Config Config

	Roadmaps      repos.RoadmapRepo
	Items         repos.RoadmapItemRepo
	TopicFields   repos.TopicFieldRepo
	Jobs          repos.CareerNodeRepo
	StudyPrograms repos.StudyProgramRepo
	Modules       repos.ModuleRepo
	Profiles      repos.UserProfileRepo
	Progress      repos.UserRoadmapItemRepo
}

// View is what roadmap reads and writes return.
type View struct {
	Roadmap *types.Roadmap `json:"roadmap"`
	Items   []ItemView     `json:"items"`
	Tree    *TreeNode      `json:"tree"`
	Roots   []*TreeNode    `json:"roots"`
}

type Service interface {
	Get(ctx context.Context, topicFieldID uint) (*View, error)
	// GetOrGenerate returns the topic field's roadmap, generating it for
	// userID's study context when none exists. created reports whether this
	// call persisted it.
	GetOrGenerate(ctx context.Context, topicFieldID, userID uint) (view *View, created bool, err error)
	GetOrGenerateForJob(ctx context.Context, jobID, userID uint) (view *View, created bool, err error)
	// IngestRaw stores already generated text as the topic field's roadmap.
	IngestRaw(ctx context.Context, topicFieldID uint, raw string, truncated bool) (view *View, created bool, err error)
	Delete(ctx context.Context, roadmapID uint) error

	Progress(ctx context.Context, userID, topicFieldID uint) (*ProgressView, error)
	UpdateProgress(ctx context.Context, userID uint, itemID types.ItemID, in ProgressUpdate) (*types.UserRoadmapItem, error)
}

type service struct {
	db       *gorm.DB
	log      *logger.Logger
	gen      llm.Generator
	locker   keylock.Locker
	cfg      Config
	ingester *Ingester
	flight   singleflight.Group

	roadmaps      repos.RoadmapRepo
	items         repos.RoadmapItemRepo
	topicFields   repos.TopicFieldRepo
	jobs          repos.CareerNodeRepo
	studyPrograms repos.StudyProgramRepo
	modules       repos.ModuleRepo
	profiles      repos.UserProfileRepo
	progress      repos.UserRoadmapItemRepo
}

func NewService(deps ServiceDeps) Service {
	cfg := deps.Config
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 8192
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 5 * time.Minute
	}
	if cfg.ParentPolicy == "" {
		cfg.ParentPolicy = PolicyLenient
	}
	locker := deps.Locker
	if locker == nil {
		locker = keylock.NewLocal()
	}
	return &service{
		db:            deps.DB,
		log:           deps.Log.With("service", "RoadmapService"),
		gen:           deps.Generator,
		locker:        locker,
		cfg:           cfg,
		ingester:      NewIngester(deps.Items, deps.Log, cfg.ParentPolicy),
		roadmaps:      deps.Roadmaps,
		items:         deps.Items,
		topicFields:   deps.TopicFields,
		jobs:          deps.Jobs,
		studyPrograms: deps.StudyPrograms,
		modules:       deps.Modules,
		profiles:      deps.Profiles,
		progress:      deps.Progress,
	}
}

type target struct {
	topicField *types.TopicField
	job        *types.CareerTreeNode
	userID     uint
}

type flightResult struct {
	view    *View
	created bool
}

func (s *service) Get(ctx context.Context, topicFieldID uint) (*View, error) {
	v, err := s.existing(ctx, topicFieldID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, apierr.NotFound(CodeRoadmapNotFound, fmt.Errorf("%w: no roadmap for topic field %d", ErrNotFound, topicFieldID))
	}
	return v, nil
}

func (s *service) GetOrGenerate(ctx context.Context, topicFieldID, userID uint) (*View, bool, error) {
	tf, err := s.loadTopicField(ctx, topicFieldID)
	if err != nil {
		return nil, false, err
	}
	if v, err := s.existing(ctx, tf.ID); err != nil || v != nil {
		return v, false, err
	}
	return s.generate(ctx, target{topicField: tf, userID: userID})
}

func (s *service) GetOrGenerateForJob(ctx context.Context, jobID, userID uint) (*View, bool, error) {
	job, err := s.jobs.GetByID(dbctx.Context{Ctx: ctx}, jobID)
	if err != nil {
		return nil, false, apierr.Internal("LOAD_JOB_FAILED", err)
	}
	if job == nil {
		return nil, false, apierr.NotFound(CodeJobNotFound, fmt.Errorf("%w: job %d", ErrNotFound, jobID))
	}
	if !job.IsLeaf {
		return nil, false, apierr.Validation(CodeNotAJob, fmt.Errorf("%w: career node %d is not a job", ErrValidation, jobID))
	}

	tf, err := s.topicFieldForJob(ctx, job)
	if err != nil {
		return nil, false, err
	}
	if v, err := s.existing(ctx, tf.ID); err != nil || v != nil {
		return v, false, err
	}
	return s.generate(ctx, target{topicField: tf, job: job, userID: userID})
}

func (s *service) IngestRaw(ctx context.Context, topicFieldID uint, raw string, truncated bool) (*View, bool, error) {
	tf, err := s.loadTopicField(ctx, topicFieldID)
	if err != nil {
		return nil, false, err
	}
	unlock, err := s.locker.Lock(ctx, targetKey(tf.ID))
	if err != nil {
		return nil, false, apierr.Internal("TARGET_LOCK_FAILED", err)
	}
	defer unlock()

	res, err := s.ingest(ctx, tf.ID, raw, truncated)
	if err != nil {
		return nil, false, err
	}
	return res.view, res.created, nil
}

func (s *service) Delete(ctx context.Context, roadmapID uint) error {
	rm, err := s.roadmaps.GetByID(dbctx.Context{Ctx: ctx}, roadmapID)
	if err != nil {
		return apierr.Internal("LOAD_ROADMAP_FAILED", err)
	}
	if rm == nil {
		return apierr.NotFound(CodeRoadmapNotFound, fmt.Errorf("%w: roadmap %d", ErrNotFound, roadmapID))
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.roadmaps.FullDeleteByIDs(dbctx.Context{Ctx: ctx, Tx: tx}, []uint{rm.ID})
	})
	if err != nil {
		s.log.Error("Delete roadmap failed", "roadmap_id", rm.ID, "error", err)
		return apierr.Internal("DELETE_ROADMAP_FAILED", err)
	}
	s.log.Info("Deleted roadmap", "roadmap_id", rm.ID, "topic_field_id", rm.TopicFieldID)
	return nil
}

func targetKey(topicFieldID uint) string { return fmt.Sprintf("roadmap:topic_field:%d", topicFieldID) }

// generate runs at most one generation per target in this process. The shared
// run is detached from the first caller's cancellation and bounded by
// GenerateTimeout instead.
func (s *service) generate(ctx context.Context, t target) (*View, bool, error) {
	key := targetKey(t.topicField.ID)
	// only the caller whose function ran reports created
	var ran bool
	ch := s.flight.DoChan(key, func() (any, error) {
		ran = true
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.GenerateTimeout)
		defer cancel()
		return s.generateLocked(runCtx, key, t)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		out := res.Val.(flightResult)
		return out.view, out.created && ran, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (s *service) generateLocked(ctx context.Context, key string, t target) (flightResult, error) {
	unlock, err := s.locker.Lock(ctx, key)
	if err != nil {
		return flightResult{}, apierr.Internal("TARGET_LOCK_FAILED", err)
	}
	defer unlock()

	// another replica may have finished while we waited
	if v, err := s.existing(ctx, t.topicField.ID); err != nil || v != nil {
		return flightResult{view: v}, err
	}

	in, err := s.promptInput(ctx, t)
	if err != nil {
		return flightResult{}, err
	}
	system, prompt := BuildPrompt(in)
	res, err := s.callGenerator(ctx, system, prompt)
	if err != nil {
		return flightResult{}, err
	}
	return s.ingest(ctx, t.topicField.ID, res.Text, res.Truncated)
}

func (s *service) callGenerator(ctx context.Context, system, prompt string) (llm.Result, error) {
	if s.gen == nil {
		return llm.Result{}, apierr.Generation(CodeGenerationFailed, fmt.Errorf("%w: no generator configured", ErrGeneration))
	}
	ctx, span := observability.StartSpan(ctx, "roadmap.generate", attribute.String("model", s.cfg.Model))
	temp := s.cfg.Temperature
	start := time.Now()
	res, err := s.gen.Generate(ctx, llm.Request{
		Model:           s.cfg.Model,
		System:          system,
		Prompt:          prompt,
		Temperature:     &temp,
		MaxOutputTokens: s.cfg.MaxOutputTokens,
	})
	observability.EndSpan(span, err)
	if err != nil {
		s.log.Error("Roadmap generation failed",
			"category", string(llm.CategoryOf(err)),
			"model", s.cfg.Model,
			"error", err,
		)
		return res, apierr.Generation(CodeGenerationFailed, fmt.Errorf("%w: %w", ErrGeneration, err))
	}
	s.log.Info("Roadmap generated",
		"model", res.Model,
		"truncated", res.Truncated,
		"output_tokens", res.OutputTokens,
		"duration", time.Since(start).String(),
	)
	return res, nil
}

// ingest sanitizes and normalizes raw before opening the transaction that
// persists the roadmap and its items.
func (s *service) ingest(ctx context.Context, topicFieldID uint, raw string, truncated bool) (flightResult, error) {
	san, err := Sanitize(raw, truncated)
	if err != nil {
		s.log.Warn("Unrepairable generator output",
			"topic_field_id", topicFieldID,
			"truncated", truncated,
			"llm_output", raw,
			"error", err,
		)
		return flightResult{}, apierr.Generation(CodeInvalidLLMJSON, fmt.Errorf("%w: %w", ErrGeneration, err))
	}
	if san.Repaired {
		s.log.Warn("Repaired generator JSON",
			"topic_field_id", topicFieldID,
			"truncated", truncated,
			"kept_items", san.KeptItems,
		)
	}
	doc, err := Normalize(s.log, san.JSON)
	if err != nil {
		if errors.Is(err, ErrInvalidJSON) {
			return flightResult{}, apierr.Generation(CodeInvalidLLMJSON, fmt.Errorf("%w: %w", ErrGeneration, err))
		}
		return flightResult{}, apierr.Validation(CodeInvalidRoadmap, err)
	}
	if len(doc.Records) == 0 {
		s.log.Warn("Generator returned a roadmap without items", "topic_field_id", topicFieldID)
	}

	ctx, span := observability.StartSpan(ctx, "roadmap.ingest",
		attribute.Int("topic_field_id", int(topicFieldID)),
		attribute.Int("items", len(doc.Records)),
	)
	var (
		rm      *types.Roadmap
		reused  bool
		created []*types.RoadmapItem
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.roadmaps.LockTarget(dbc, topicFieldID); err != nil {
			return err
		}
		cur, err := s.roadmaps.GetByTopicFieldID(dbc, topicFieldID)
		if err != nil {
			return err
		}
		if cur != nil {
			rm, reused = cur, true
			return nil
		}
		row := &types.Roadmap{TopicFieldID: topicFieldID, Name: doc.Name, Description: doc.Description}
		if err := s.roadmaps.Create(dbc, row); err != nil {
			return err
		}
		items, err := s.ingester.Ingest(dbc, row.ID, doc.Records)
		if err != nil {
			return err
		}
		rm, created = row, items
		return nil
	})
	observability.EndSpan(span, err)

	if err != nil {
		switch {
		case isUniqueViolation(err):
			s.log.Info("Roadmap created concurrently; reusing", "topic_field_id", topicFieldID)
			v, rerr := s.existing(ctx, topicFieldID)
			if rerr != nil {
				return flightResult{}, rerr
			}
			if v != nil {
				return flightResult{view: v}, nil
			}
			return flightResult{}, apierr.Conflict("ROADMAP_CONFLICT", err)
		case errors.Is(err, ErrValidation):
			return flightResult{}, apierr.Validation(CodeInvalidRoadmap, err)
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			return flightResult{}, apierr.Generation(CodeGenerationFailed, fmt.Errorf("%w: %w", ErrGeneration, err))
		}
		s.log.Error("Persist roadmap failed", "topic_field_id", topicFieldID, "error", err)
		return flightResult{}, apierr.Internal("PERSIST_ROADMAP_FAILED", err)
	}

	if reused {
		v, err := s.load(ctx, rm)
		return flightResult{view: v}, err
	}
	s.log.Info("Roadmap stored", "roadmap_id", rm.ID, "topic_field_id", topicFieldID, "items", len(created))
	return flightResult{view: newView(rm, created), created: true}, nil
}

func (s *service) existing(ctx context.Context, topicFieldID uint) (*View, error) {
	rm, err := s.roadmaps.GetByTopicFieldID(dbctx.Context{Ctx: ctx}, topicFieldID)
	if err != nil {
		return nil, apierr.Internal("LOAD_ROADMAP_FAILED", err)
	}
	if rm == nil {
		return nil, nil
	}
	return s.load(ctx, rm)
}

func (s *service) load(ctx context.Context, rm *types.Roadmap) (*View, error) {
	items, err := s.items.ListByRoadmapID(dbctx.Context{Ctx: ctx}, rm.ID)
	if err != nil {
		return nil, apierr.Internal("LOAD_ROADMAP_ITEMS_FAILED", err)
	}
	return newView(rm, items), nil
}

func newView(rm *types.Roadmap, items []*types.RoadmapItem) *View {
	roots := BuildForest(items)
	var tree *TreeNode
	if len(roots) > 0 {
		tree = BuildTree(items)
	}
	return &View{Roadmap: rm, Items: ItemViews(items), Tree: tree, Roots: roots}
}

func (s *service) loadTopicField(ctx context.Context, id uint) (*types.TopicField, error) {
	tf, err := s.topicFields.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, apierr.Internal("LOAD_TOPIC_FIELD_FAILED", err)
	}
	if tf == nil {
		return nil, apierr.NotFound(CodeTopicFieldNotFound, fmt.Errorf("%w: topic field %d", ErrNotFound, id))
	}
	return tf, nil
}

var errLinkLost = errors.New("job already linked")

// topicFieldForJob returns the job's topic field, creating and linking one on
// first use.
func (s *service) topicFieldForJob(ctx context.Context, job *types.CareerTreeNode) (*types.TopicField, error) {
	if job.TopicFieldID != nil {
		return s.loadTopicField(ctx, *job.TopicFieldID)
	}

	unlock, err := s.locker.Lock(ctx, fmt.Sprintf("roadmap:job:%d", job.ID))
	if err != nil {
		return nil, apierr.Internal("TARGET_LOCK_FAILED", err)
	}
	defer unlock()

	fresh, err := s.jobs.GetByID(dbctx.Context{Ctx: ctx}, job.ID)
	if err != nil {
		return nil, apierr.Internal("LOAD_JOB_FAILED", err)
	}
	if fresh != nil && fresh.TopicFieldID != nil {
		return s.loadTopicField(ctx, *fresh.TopicFieldID)
	}

	var tf *types.TopicField
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row := &types.TopicField{
			Name:        "Roadmap for " + strings.TrimSpace(job.Name),
			Description: job.Description,
		}
		if err := s.topicFields.Create(dbc, row); err != nil {
			return err
		}
		linked, err := s.jobs.LinkTopicField(dbc, job.ID, row.ID)
		if err != nil {
			return err
		}
		if !linked {
			return errLinkLost
		}
		tf = row
		return nil
	})
	switch {
	case errors.Is(err, errLinkLost):
		again, gerr := s.jobs.GetByID(dbctx.Context{Ctx: ctx}, job.ID)
		if gerr != nil || again == nil || again.TopicFieldID == nil {
			return nil, apierr.Internal("LINK_TOPIC_FIELD_FAILED", err)
		}
		return s.loadTopicField(ctx, *again.TopicFieldID)
	case err != nil:
		return nil, apierr.Internal("LINK_TOPIC_FIELD_FAILED", err)
	}
	s.log.Info("Created topic field for job", "job_id", job.ID, "topic_field_id", tf.ID)
	return tf, nil
}

func (s *service) promptInput(ctx context.Context, t target) (PromptInput, error) {
	dbc := dbctx.Context{Ctx: ctx}
	profile, err := s.profiles.GetByUserID(dbc, t.userID)
	if err != nil {
		return PromptInput{}, apierr.Internal("LOAD_PROFILE_FAILED", err)
	}
	if profile == nil {
		return PromptInput{}, apierr.NotFound(CodeProfileNotFound, fmt.Errorf("%w: profile for user %d", ErrNotFound, t.userID))
	}
	if profile.StudyProgramID == nil {
		return PromptInput{}, apierr.Validation(CodeStudyProgramMissing, fmt.Errorf("%w: user %d has no study program", ErrValidation, t.userID))
	}
	// the study program and the user's open modules only depend on the profile
	var (
		sp   *types.StudyProgram
		mods []*types.Module
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if sp, err = s.studyPrograms.GetByID(dbctx.Context{Ctx: gctx}, *profile.StudyProgramID); err != nil {
			return apierr.Internal("LOAD_STUDY_PROGRAM_FAILED", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if mods, err = s.modules.ListAvailable(dbctx.Context{Ctx: gctx}, *profile.StudyProgramID, t.userID); err != nil {
			return apierr.Internal("LOAD_MODULES_FAILED", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return PromptInput{}, err
	}
	if sp == nil {
		return PromptInput{}, apierr.Validation(CodeStudyProgramMissing, fmt.Errorf("%w: study program %d does not exist", ErrValidation, *profile.StudyProgramID))
	}

	in := PromptInput{
		TargetName:        t.topicField.Name,
		TargetDescription: t.topicField.Description,
		StudyProgram:      sp.Name,
		CurrentSemester:   1,
		Skills:            profile.Skills,
		Modules:           mods,
	}
	if profile.CurrentSemester != nil {
		in.CurrentSemester = *profile.CurrentSemester
	}
	if t.job != nil {
		in.Job = true
		in.TargetName = t.job.Name
		in.TargetDescription = t.job.Description
	}
	return in, nil
}
