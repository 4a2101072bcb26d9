package adapter

import "fmt"

// TransportError wraps a failure to complete a provider call: network
// faults, timeouts, and non-2xx statuses from the backend.
type TransportError struct {
	Provider string
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "transport error"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("provider %s returned status %d", e.Provider, e.Status)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// SchemaError reports a call that completed at the transport level but
// whose payload carried no recognizable image data. Reported separately
// from transport failures so misconfigured response shapes are
// distinguishable from unreachable backends.
type SchemaError struct {
	Provider string
}

func (e *SchemaError) Error() string {
	return "no recognizable payload"
}
