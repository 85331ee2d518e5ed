package tasks

// TaskSchedulerInterface is the surface the main application uses to manage
// background refresh processing.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
