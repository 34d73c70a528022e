// Package events carries fire-and-forget notifications from the download
// manager and the engine supervisor to whoever is listening (normally the UI
// over the /events stream).
package events

// Well-known event names.
const (
	DownloadProgress = "download-progress"
	EngineError      = "engine-error"
)

// Event is a named notification with an optional payload.
type Event struct {
	Name string
	Data any
}

// Publisher receives events. Implementations must be non-blocking and must
// not panic: a slow or absent listener never fails the emitting operation.
type Publisher interface {
	Publish(Event)
}

// PublisherFunc adapts a plain function to Publisher.
type PublisherFunc func(Event)

func (f PublisherFunc) Publish(e Event) { f(e) }

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(Event) {}

// OrNoop returns p, or Noop when p is nil.
func OrNoop(p Publisher) Publisher {
	if p == nil {
		return Noop{}
	}
	return p
}
