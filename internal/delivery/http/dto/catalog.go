package dto

import (
	"time"

	"skill-catalog/internal/domain/catalog"
)

type SkillRef struct {
	OriginProjectID string `json:"originProjectId"`
	OriginSkillID   string `json:"originSkillId"`
}

func (r SkillRef) Domain() catalog.SkillRef {
	return catalog.SkillRef{ProjectID: r.OriginProjectID, SkillID: r.OriginSkillID}
}

func FromSkillRef(r catalog.SkillRef) SkillRef {
	return SkillRef{OriginProjectID: r.ProjectID, OriginSkillID: r.SkillID}
}

type CatalogItemResponse struct {
	OriginProjectID   string    `json:"originProjectId"`
	OriginSkillID     string    `json:"originSkillId"`
	Name              string    `json:"name"`
	OriginProjectName string    `json:"originProjectName"`
	SubjectID         string    `json:"subjectId"`
	SubjectName       string    `json:"subjectName"`
	TotalPoints       int       `json:"totalPoints"`
	ExportedAt        time.Time `json:"exportedAt"`
	Importable        bool      `json:"importable"`
	Reason            string    `json:"reason,omitempty"`
}

type CapacityResponse struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Limit   int    `json:"limit"`
	Current int    `json:"current"`
}

type CatalogPageResponse struct {
	Items             []CatalogItemResponse `json:"items"`
	TotalCount        int                   `json:"totalCount"`
	Page              int                   `json:"page"`
	PageSize          int                   `json:"pageSize"`
	SelectionSize     int                   `json:"selectionSize"`
	SubjectSkillCount int                   `json:"subjectSkillCount"`
	Capacity          *CapacityResponse     `json:"capacity,omitempty"`
}

func FromCapacityError(e *catalog.CapacityError) *CapacityResponse {
	if e == nil {
		return nil
	}
	return &CapacityResponse{Reason: string(e.Reason), Message: e.Message, Limit: e.Limit, Current: e.Current}
}

type SelectionRequest struct {
	ProjectID string     `json:"projectId"`
	SubjectID string     `json:"subjectId"`
	Selected  []SkillRef `json:"selected"`
	Candidate SkillRef   `json:"candidate"`
}

type SelectionResponse struct {
	Allowed           bool   `json:"allowed"`
	Reason            string `json:"reason,omitempty"`
	Message           string `json:"message,omitempty"`
	SelectionSize     int    `json:"selectionSize"`
	SubjectSkillCount int    `json:"subjectSkillCount"`
}
