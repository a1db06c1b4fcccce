package app

import (
	"github.com/colonyops/taskcoach/internal/core/model"
)

// Track starts tracking task, stopping any other tracked task first. It
// returns the new effort and the efforts it stopped. A task already being
// tracked keeps its running effort.
func (a *App) Track(task *model.Task) (*model.Effort, []*model.Effort) {
	var stopped []*model.Effort
	for _, e := range a.Efforts.CurrentlyTracked() {
		if e.Task() != task {
			stopped = append(stopped, e.Task().StopTracking()...)
		}
	}
	for _, e := range task.Efforts() {
		if e.IsBeingTracked() {
			return e, stopped
		}
	}
	return task.StartTracking(), stopped
}

// StopTracking stops every tracked effort and returns them.
func (a *App) StopTracking() []*model.Effort {
	var stopped []*model.Effort
	for _, e := range a.Efforts.CurrentlyTracked() {
		if e.IsBeingTracked() {
			stopped = append(stopped, e.Task().StopTracking()...)
		}
	}
	return stopped
}
