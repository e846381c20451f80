package worker

import (
	"github.com/spec-kit/triage-service/internal/service"
)

// StartSyncWorker registers platform sync handlers.
func StartSyncWorker(syncService *service.SyncService) {
	if syncService == nil {
		return
	}
	syncService.RegisterHandlers()
}
