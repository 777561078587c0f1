package catalog

import (
	"time"

	"github.com/google/uuid"
)

// SkillRef identifies a skill in its origin project.
type SkillRef struct {
	ProjectID string `json:"originProjectId"`
	SkillID   string `json:"originSkillId"`
}

func (r SkillRef) String() string {
	return r.ProjectID + ":" + r.SkillID
}

func (r SkillRef) IsZero() bool {
	return r.ProjectID == "" || r.SkillID == ""
}

// ExportableSkill is an exported skill as seen through the catalog.
type ExportableSkill struct {
	Ref               SkillRef
	OriginProjectName string
	Name              string
	SubjectID         string
	SubjectName       string
	TotalPoints       int
	ExportedAt        time.Time
}

type LinkState string

const (
	LinkPending LinkState = "pending"
	LinkActive  LinkState = "active"
)

type ImportedSkillLink struct {
	ID                   uuid.UUID
	DestinationProjectID string
	DestinationSkillID   string
	DestinationSubjectID string
	DestinationGroupID   *string
	Origin               SkillRef
	State                LinkState
	CreatedAt            time.Time
	ActivatedAt          *time.Time
}

type JobState string

const (
	JobIdle     JobState = "idle"
	JobRunning  JobState = "running"
	JobComplete JobState = "complete"
)

type FinalizationJob struct {
	ProjectID   string
	JobID       uuid.UUID
	State       JobState
	LinkCount   int
	Attempts    int
	LeaseOwner  *string
	TriggeredBy *string
	StartedAt   *time.Time
	HeartbeatAt *time.Time
	CompletedAt *time.Time
	Version     int64
	UpdatedAt   time.Time
}

// SkillType mirrors the skills.type column.
type SkillType string

const (
	TypeSkill       SkillType = "Skill"
	TypeSkillsGroup SkillType = "SkillsGroup"
)

// Skill is a row of the collaborator-owned skills table.
type Skill struct {
	ProjectID   string
	ID          string
	SubjectID   string
	GroupID     *string
	Type        SkillType
	Name        string
	TotalPoints int
	Enabled     bool
	ReadOnly    bool
	Exported    bool
	ExportedAt  *time.Time
	CopiedFrom  *SkillRef
}

func (s Skill) IsShadow() bool {
	return s.CopiedFrom != nil
}
