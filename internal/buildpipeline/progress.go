package buildpipeline

import (
	"time"

	"dlc/internal/driver"
)

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageParse, Status: StatusQueued})
	}
}

func emitStage(sink ProgressSink, files []string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	}
}

// phaseObserver переводит фазы драйвера одного файла в события прогресса.
type phaseObserver struct {
	sink    ProgressSink
	file    string
	timings *Timings
}

func (p *phaseObserver) OnPhase(ev driver.PhaseEvent) {
	stage, ok := stageOf(ev.Name)
	if !ok {
		return
	}
	if ev.Status == driver.PhaseEnd {
		p.timings.Add(stage, ev.Elapsed)
		if ev.Err != nil && p.sink != nil {
			p.sink.OnEvent(Event{File: p.file, Stage: stage, Status: StatusError, Err: ev.Err, Elapsed: ev.Elapsed})
		}
		return
	}
	if p.sink != nil {
		p.sink.OnEvent(Event{File: p.file, Stage: stage, Status: StatusWorking})
	}
}

func stageOf(phase string) (Stage, bool) {
	switch phase {
	case driver.PhaseLoad, driver.PhaseParse:
		return StageParse, true
	case driver.PhaseOptimize:
		return StageOptimize, true
	case driver.PhaseVerify, driver.PhaseLower:
		return StageLower, true
	default:
		return "", false
	}
}
