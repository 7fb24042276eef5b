package service

import (
	"labgate.app/gateway/core/config"
	"labgate.app/gateway/internal/platform"
	"labgate.app/gateway/internal/task"
)

type Services struct {
	client *platform.Client
	orch   config.OrchestrationConfig
}

func NewServices(client *platform.Client, orch config.OrchestrationConfig) *Services {
	return &Services{client: client, orch: orch}
}

func (s *Services) Tasks() TaskService {
	runner := task.NewRunner(s.client, task.RunnerConfig{
		SyncWaitBudget: s.orch.SyncWaitBudget,
		Poll: task.PollPolicy{
			Initial: s.orch.InitialPollInterval,
			Max:     s.orch.MaxPollInterval,
		},
	})
	return NewTaskService(runner, s.client)
}

func (s *Services) Jobs() JobCatalogService {
	return NewJobCatalogService()
}
