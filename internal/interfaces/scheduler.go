package interfaces

// SchedulerService drives the periodic analysis cycle
type SchedulerService interface {
	// Start begins the cron-driven cycle with the configured schedule
	Start() error

	// Stop halts the cycle and waits for a running pass to finish
	Stop()
}
