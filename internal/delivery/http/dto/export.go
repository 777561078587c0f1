package dto

import "time"

type ExportRequest struct {
	SkillIDs []string `json:"skillIds"`
}

type ExportResultResponse struct {
	SkillID string `json:"skillId"`
	Result  string `json:"result"`
}

type ExportedSkillResponse struct {
	SkillID     string    `json:"skillId"`
	Name        string    `json:"name"`
	SubjectID   string    `json:"subjectId"`
	SubjectName string    `json:"subjectName"`
	TotalPoints int       `json:"totalPoints"`
	ExportedAt  time.Time `json:"exportedAt"`
}

type ExportedPageResponse struct {
	Items      []ExportedSkillResponse `json:"items"`
	TotalCount int                     `json:"totalCount"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"pageSize"`
}

type ImporterResponse struct {
	ProjectID   string     `json:"projectId"`
	ProjectName string     `json:"projectName"`
	SkillID     string     `json:"skillId"`
	State       string     `json:"state"`
	ImportedAt  time.Time  `json:"importedAt"`
	ActivatedAt *time.Time `json:"activatedAt,omitempty"`
}

type ExportStatsResponse struct {
	SkillID    string             `json:"skillId"`
	Name       string             `json:"name"`
	Exported   bool               `json:"exported"`
	ExportedAt *time.Time         `json:"exportedAt,omitempty"`
	Importers  []ImporterResponse `json:"importers"`
}

type DeleteSkillResponse struct {
	WasImported   bool `json:"wasImported"`
	OrphanedLinks int  `json:"orphanedLinks"`
}
