package handler

import (
	"errors"

	"skill-catalog/internal/delivery/http/dto"
	"skill-catalog/internal/delivery/http/middleware"
	"skill-catalog/internal/domain/catalog"
	"skill-catalog/internal/pkg/response"
	"skill-catalog/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type reasonData struct {
	Reason string `json:"reason"`
}

func mapUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	var capErr *catalog.CapacityError
	switch {
	case errors.As(err, &capErr):
		return middleware.NewAppError(fiber.StatusBadRequest, capErr.Message, dto.FromCapacityError(capErr), err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrFinalizationInProgress):
		return middleware.NewAppError(fiber.StatusConflict, "Finalization in progress", reasonData{"FinalizationInProgress"}, err)
	case errors.Is(err, usecase.ErrAlreadyRunning):
		return middleware.NewAppError(fiber.StatusConflict, "Finalization already running", reasonData{"AlreadyRunning"}, err)
	case errors.Is(err, usecase.ErrNothingPending):
		return middleware.NewAppError(fiber.StatusBadRequest, "Nothing to finalize", reasonData{"NothingPending"}, err)
	case errors.Is(err, usecase.ErrImportConflict):
		return middleware.NewAppError(fiber.StatusConflict, "Import conflicts with a concurrent import", nil, err)
	case errors.Is(err, usecase.ErrSubjectNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Subject not found", nil, err)
	case errors.Is(err, usecase.ErrGroupNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Group not found in subject", nil, err)
	case errors.Is(err, usecase.ErrSkillNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Skill not found", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

func badRequest(err error) error {
	return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
}
