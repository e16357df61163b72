package analysis

// Status is the stage the orchestrator is executing for one file. It is
// recorded on log lines and in panic reports so a failure names the stage
// it happened in.
type Status string

const (
	StatusIdentifying  Status = "IDENTIFYING"
	StatusTypeDispatch Status = "TYPE_DISPATCH"
	StatusCrossCutting Status = "CROSS_CUTTING"
	StatusScoring      Status = "SCORING"
	StatusDone         Status = "DONE"
)

func (s Status) String() string {
	return string(s)
}
