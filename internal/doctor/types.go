package doctor

// Check identifies one validation step in the doctor pipeline. The identity
// is the closed enum; human-readable text lives in String and the renderers.
type Check uint8

const (
	// CheckTypeScript validates the TypeScript compiler version.
	CheckTypeScript Check = iota
	// CheckDependencies validates the language-service plugin and core
	// library packages.
	CheckDependencies
	// CheckConfig locates and validates the plugin configuration.
	CheckConfig
	// CheckSchema verifies the configured schema is reachable.
	CheckSchema
)

// Checks lists every pipeline check in execution order.
var Checks = []Check{CheckTypeScript, CheckDependencies, CheckConfig, CheckSchema}

func (c Check) String() string {
	switch c {
	case CheckTypeScript:
		return "TypeScript version"
	case CheckDependencies:
		return "Installed dependencies"
	case CheckConfig:
		return "Project configuration"
	case CheckSchema:
		return "Schema availability"
	}
	return "unknown"
}

// Status captures the lifecycle state a check event reports.
type Status uint8

const (
	// StatusRunning means the check has started.
	StatusRunning Status = iota
	// StatusCompleted means the check passed.
	StatusCompleted
	// StatusFailed means the check failed; the pipeline stops.
	StatusFailed
	// StatusSuccess is the overall-success sentinel emitted once after the
	// final check completes. It carries no check.
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	case StatusSuccess:
		return "success"
	}
	return "unknown"
}

// Event reports progress for one check, or overall success when Status is
// StatusSuccess. Final marks the last per-check completion of the run.
type Event struct {
	Check  Check
	Status Status
	Final  bool
}

// Sink consumes progress events. Delivery is synchronous: the pipeline does
// not proceed until OnEvent returns, which gives consumers one event per
// acknowledgment.
type Sink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel. An unbuffered channel makes
// the consumer pace the pipeline.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
