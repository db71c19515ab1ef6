package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/agriconnect/agriconnect-backend/api/middleware"
	"github.com/agriconnect/agriconnect-backend/api/responses"
	"github.com/agriconnect/agriconnect-backend/api/validators"
	"github.com/agriconnect/agriconnect-backend/internal/analytics"
	"github.com/agriconnect/agriconnect-backend/pkg/db/models"
	"github.com/agriconnect/agriconnect-backend/pkg/logger"
)

type listMetricsResponse struct {
	Metrics    []models.FarmMetric `json:"metrics"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

// RecordFarmMetric stores one metric observation for a farm the actor manages.
func RecordFarmMetric(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body analytics.RecordMetricRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		metric, err := svc.RecordMetric(r.Context(), actor, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, metric)
	}
}

// ListFarmMetrics returns the metric feed, scoped to the actor's farms unless staff.
func ListFarmMetrics(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		farmID, err := validators.ParseQueryUUID(r, "farm_id", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req := analytics.ListMetricsRequest{
			MetricType: strings.TrimSpace(r.URL.Query().Get("metric_type")),
			Limit:      limit,
			Cursor:     strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		if farmID != uuid.Nil {
			req.FarmID = &farmID
		}

		metrics, next, err := svc.ListMetrics(r.Context(), actor, req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listMetricsResponse{Metrics: metrics, NextCursor: next})
	}
}

// FarmAnalyticsSummary aggregates metrics per farm for the caller's scope.
func FarmAnalyticsSummary(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.Summary(r.Context(), actor, strings.TrimSpace(r.URL.Query().Get("metric_type")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
