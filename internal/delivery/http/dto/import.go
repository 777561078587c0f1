package dto

import (
	"time"

	"github.com/google/uuid"
)

type ImportRequest struct {
	DestinationProjectID string     `json:"destinationProjectId"`
	SubjectID            string     `json:"subjectId"`
	GroupID              string     `json:"groupId,omitempty"`
	Items                []SkillRef `json:"items"`
}

type CreatedImportResponse struct {
	Item    SkillRef  `json:"item"`
	SkillID string    `json:"skillId"`
	LinkID  uuid.UUID `json:"linkId"`
}

type RejectedImportResponse struct {
	Item   SkillRef `json:"item"`
	Reason string   `json:"reason"`
}

type ImportResponse struct {
	Created  []CreatedImportResponse  `json:"created"`
	Rejected []RejectedImportResponse `json:"rejected"`
}

type ImportedSkillResponse struct {
	LinkID      uuid.UUID  `json:"linkId"`
	SkillID     string     `json:"skillId"`
	SubjectID   string     `json:"subjectId"`
	GroupID     *string    `json:"groupId,omitempty"`
	Name        string     `json:"name"`
	TotalPoints int        `json:"totalPoints"`
	Enabled     bool       `json:"enabled"`
	State       string     `json:"state"`
	Origin      SkillRef   `json:"origin"`
	OriginName  string     `json:"originName"`
	ImportedAt  time.Time  `json:"importedAt"`
	ActivatedAt *time.Time `json:"activatedAt,omitempty"`
}
