package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	types "github.com/yungbote/unipilot-backend/internal/domain"
)

func SeedTopicField(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.TopicField {
	tb.Helper()
	tf := &types.TopicField{Name: name, Description: name + " field"}
	if err := tx.WithContext(ctx).Create(tf).Error; err != nil {
		tb.Fatalf("seed topic field: %v", err)
	}
	return tf
}

func SeedStudyProgram(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.StudyProgram {
	tb.Helper()
	sp := &types.StudyProgram{Name: name, DegreeType: "BSc"}
	if err := tx.WithContext(ctx).Create(sp).Error; err != nil {
		tb.Fatalf("seed study program: %v", err)
	}
	return sp
}

func SeedModule(tb testing.TB, ctx context.Context, tx *gorm.DB, studyProgramID uint, name string, semester int) *types.Module {
	tb.Helper()
	sem := semester
	m := &types.Module{Name: name, ModuleType: "REQUIRED", StudyProgramID: studyProgramID, Semester: &sem}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

func SeedJob(tb testing.TB, ctx context.Context, tx *gorm.DB, studyProgramID uint, name string, leaf bool) *types.CareerTreeNode {
	tb.Helper()
	n := &types.CareerTreeNode{Name: name, StudyProgramID: studyProgramID, IsLeaf: leaf, Level: 2}
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		tb.Fatalf("seed career node: %v", err)
	}
	return n
}

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uint, studyProgramID *uint, semester *int) *types.UserProfile {
	tb.Helper()
	p := &types.UserProfile{UserID: userID, StudyProgramID: studyProgramID, CurrentSemester: semester, Skills: "Go, SQL"}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed user profile: %v", err)
	}
	return p
}

func SeedRoadmap(tb testing.TB, ctx context.Context, tx *gorm.DB, topicFieldID uint) *types.Roadmap {
	tb.Helper()
	rm := &types.Roadmap{TopicFieldID: topicFieldID, Name: "Seeded roadmap"}
	if err := tx.WithContext(ctx).Create(rm).Error; err != nil {
		tb.Fatalf("seed roadmap: %v", err)
	}
	return rm
}

func SeedItem(tb testing.TB, ctx context.Context, tx *gorm.DB, roadmapID uint, parentID *types.ItemID, title string, level, order int) *types.RoadmapItem {
	tb.Helper()
	it := &types.RoadmapItem{
		RoadmapID: roadmapID,
		ParentID:  parentID,
		ItemType:  types.ItemCourse,
		Title:     title,
		Semester:  1,
		Level:     level,
		Order:     order,
	}
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed roadmap item: %v", err)
	}
	return it
}
