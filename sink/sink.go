package sink

import "github.com/hupe1980/simmesh/logging"

// Sink receives generated utterances. Implementations must return quickly;
// anything slow belongs behind a channel or goroutine owned by the sink.
type Sink interface {
	ShowText(agentID, agentName, text string)
}

// Func adapts an ordinary function to the Sink interface.
type Func func(agentID, agentName, text string)

// ShowText implements Sink.
func (f Func) ShowText(agentID, agentName, text string) { f(agentID, agentName, text) }

// Multi fans an utterance out to several sinks in order.
type Multi []Sink

// ShowText implements Sink.
func (m Multi) ShowText(agentID, agentName, text string) {
	for _, s := range m {
		s.ShowText(agentID, agentName, text)
	}
}

// LogSink writes every utterance to a structured logger. Useful as the
// default presentation during development and in headless deployments.
type LogSink struct {
	logger logging.Logger
}

// NewLogSink creates a sink logging at info level.
func NewLogSink(logger logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &LogSink{logger: logger}
}

// ShowText implements Sink.
func (s *LogSink) ShowText(agentID, agentName, text string) {
	s.logger.Info("utterance", "agent_id", agentID, "agent_name", agentName, "text", text)
}
