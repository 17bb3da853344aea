package roadmap

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrGeneration wraps every failed or unusable generator call.
	ErrGeneration = errors.New("roadmap generation failed")
	// ErrInvalidJSON means the sanitizer could not recover parseable JSON.
	ErrInvalidJSON = errors.New("LLM returned invalid JSON")
	ErrValidation  = errors.New("roadmap validation failed")
	ErrNotFound    = errors.New("not found")
)

const (
	CodeTopicFieldNotFound  = "TOPIC_FIELD_NOT_FOUND"
	CodeJobNotFound         = "JOB_NOT_FOUND"
	CodeRoadmapNotFound     = "ROADMAP_NOT_FOUND"
	CodeItemNotFound        = "ROADMAP_ITEM_NOT_FOUND"
	CodeProfileNotFound     = "PROFILE_NOT_FOUND"
	CodeNotAJob             = "NOT_A_JOB"
	CodeStudyProgramMissing = "STUDY_PROGRAM_MISSING"
	CodeInvalidRoadmap      = "INVALID_ROADMAP"
	CodeGenerationFailed    = "GENERATION_FAILED"
	CodeInvalidLLMJSON      = "INVALID_LLM_JSON"
)

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}
