package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/uncoverhq/ops-backend/api/middleware"
	"github.com/uncoverhq/ops-backend/api/validators"
	"github.com/uncoverhq/ops-backend/pkg/pagination"
)

// actorFrom resolves the acting user from the request context. The actor is
// optional; a missing or malformed header yields a nil actor.
func actorFrom(r *http.Request) *uuid.UUID {
	raw := middleware.ActorIDFromContext(r.Context())
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
