package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "task_workflow_tasks_created_total",
		Help: "Total number of tasks created",
	})

	TransitionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "task_workflow_transitions_applied_total",
		Help: "Total number of status changes applied",
	}, []string{"from", "to"})

	TransitionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "task_workflow_transitions_rejected_total",
		Help: "Total number of status changes rejected, by reason",
	}, []string{"reason"})
)
