package services

import (
	"errors"
	"kodikas-backend/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lifecycleCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kodikas",
		Subsystem: "lifecycle",
		Name:      "operations_total",
		Help:      "The total number of committed entity mutations",
	}, []string{"entity", "operation"})

	guardRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kodikas",
		Subsystem: "lifecycle",
		Name:      "guard_rejections_total",
		Help:      "The total number of refused organization deactivations",
	}, []string{"reason"})
)

func recordMutation(entity models.EntityType, operation string) {
	lifecycleCounter.WithLabelValues(string(entity), operation).Inc()
}

func rejectionReason(err error) string {
	var (
		inactive *models.AlreadyInactiveError
		members  *models.HasActiveMembersError
		projects *models.HasActiveProjectsError
	)
	switch {
	case errors.As(err, &inactive):
		return "already_inactive"
	case errors.As(err, &members):
		return "has_members"
	case errors.As(err, &projects):
		return "has_projects"
	}
	return "other"
}
