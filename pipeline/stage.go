package pipeline

import "fmt"

// Stage is where a track is in the pipeline.
type Stage int

const (
	StageLoaded Stage = iota
	StageTimestampsResolved
	StageFiltered
	StageResampled
	StageSimplified
	StageShaped
	StageEmitted

	// Abort states.
	StageSkippedEmpty
	StageSkippedNoTimestamps
)

var stageNames = map[Stage]string{
	StageLoaded:              "Loaded",
	StageTimestampsResolved:  "TimestampsResolved",
	StageFiltered:            "Filtered",
	StageResampled:           "Resampled",
	StageSimplified:          "Simplified",
	StageShaped:              "Shaped",
	StageEmitted:             "Emitted",
	StageSkippedEmpty:        "SkippedEmpty",
	StageSkippedNoTimestamps: "SkippedNoTimestamps",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// transitions lists the legal next stages for each stage.
// The skip states are only reachable before filtering starts.
var transitions = map[Stage][]Stage{
	StageLoaded:             {StageTimestampsResolved, StageSkippedEmpty, StageSkippedNoTimestamps},
	StageTimestampsResolved: {StageFiltered, StageSkippedEmpty, StageSkippedNoTimestamps},
	StageFiltered:           {StageResampled},
	StageResampled:          {StageSimplified},
	StageSimplified:         {StageShaped},
	StageShaped:             {StageEmitted},
}

func (s Stage) CanTransition(to Stage) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Stage) Terminal() bool {
	return len(transitions[s]) == 0
}

// Skipped reports whether s is one of the abort states.
func (s Stage) Skipped() bool {
	return s == StageSkippedEmpty || s == StageSkippedNoTimestamps
}
