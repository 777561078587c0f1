package dto

import (
	"time"

	"github.com/google/uuid"
)

type FinalizeRequest struct {
	ProjectID string `json:"projectId"`
}

type FinalizeResponse struct {
	JobID     uuid.UUID `json:"jobId"`
	LinkCount int       `json:"linkCount"`
}

type FinalizationStatusResponse struct {
	ProjectID   string     `json:"projectId"`
	State       string     `json:"state"`
	Remaining   int        `json:"remaining"`
	LinkCount   int        `json:"linkCount"`
	JobID       *uuid.UUID `json:"jobId,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type FinalizationInfoResponse struct {
	NumSkillsToFinalize int    `json:"numSkillsToFinalize"`
	NumProjectsInvolved int    `json:"numProjectsInvolved"`
	PendingPointsTotal  int    `json:"pendingPointsTotal"`
	State               string `json:"state"`
}
