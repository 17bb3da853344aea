package domain

import "github.com/yungbote/unipilot-backend/internal/domain/roadmap"

type ItemID = roadmap.ItemID
type ItemType = roadmap.ItemType
type TopSkill = roadmap.TopSkill

const (
	ItemCourse      = roadmap.ItemCourse
	ItemModule      = roadmap.ItemModule
	ItemProject     = roadmap.ItemProject
	ItemSkill       = roadmap.ItemSkill
	ItemBook        = roadmap.ItemBook
	ItemCertificate = roadmap.ItemCertificate
	ItemInternship  = roadmap.ItemInternship
	ItemBootcamp    = roadmap.ItemBootcamp
	ItemCareer      = roadmap.ItemCareer
)

type Roadmap = roadmap.Roadmap
type RoadmapItem = roadmap.RoadmapItem
type UserRoadmapItem = roadmap.UserRoadmapItem

type TopicField = roadmap.TopicField
type CareerTreeNode = roadmap.CareerTreeNode
type StudyProgram = roadmap.StudyProgram
type Module = roadmap.Module
type UserProfile = roadmap.UserProfile
type UserModuleProgress = roadmap.UserModuleProgress

var ParseItemType = roadmap.ParseItemType
