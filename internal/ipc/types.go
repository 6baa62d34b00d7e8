package ipc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"proctrack/internal/config"
)

// Kind names a request variant. On the wire it is the single key of the
// request object.
type Kind string

const (
	KindShow     Kind = "show"
	KindExport   Kind = "export"
	KindSettings Kind = "settings"
	KindAdd      Kind = "add"
	KindRemove   Kind = "remove"
	KindOption   Kind = "option"
	KindChange   Kind = "change"
	KindDuration Kind = "duration"
	KindImport   Kind = "import"
	KindMove     Kind = "move"
	KindQuit     Kind = "quit"
)

// Kinds lists every request kind the daemon understands.
func Kinds() []Kind {
	return []Kind{
		KindShow, KindExport, KindSettings, KindAdd, KindRemove, KindOption,
		KindChange, KindDuration, KindImport, KindMove, KindQuit,
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// Request is one tagged command: {"<kind>": <payload>}. A bare JSON string
// "<kind>" is accepted on decode and means an empty payload.
type Request struct {
	Kind    Kind
	Payload json.RawMessage
}

// NewRequest encodes payload under kind. A nil payload becomes {}.
func NewRequest(kind Kind, payload any) (Request, error) {
	if !kind.Valid() {
		return Request{}, fmt.Errorf("unknown request kind %q", kind)
	}
	if payload == nil {
		return Request{Kind: kind, Payload: json.RawMessage("{}")}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return Request{Kind: kind, Payload: raw}, nil
}

// MarshalJSON encodes the request as a single-key object.
func (r Request) MarshalJSON() ([]byte, error) {
	payload := r.Payload
	if len(bytes.TrimSpace(payload)) == 0 {
		payload = json.RawMessage("{}")
	}
	return json.Marshal(map[Kind]json.RawMessage{r.Kind: payload})
}

// UnmarshalJSON accepts {"<kind>": payload} with exactly one known key, or a
// bare "<kind>" string.
func (r *Request) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var kind Kind
		if err := json.Unmarshal(trimmed, &kind); err != nil {
			return err
		}
		if !kind.Valid() {
			return fmt.Errorf("unknown request kind %q", kind)
		}
		r.Kind = kind
		r.Payload = json.RawMessage("{}")
		return nil
	}

	var tagged map[Kind]json.RawMessage
	if err := json.Unmarshal(trimmed, &tagged); err != nil {
		return err
	}
	if len(tagged) != 1 {
		return fmt.Errorf("request must have exactly one kind, got %d", len(tagged))
	}
	for kind, payload := range tagged {
		if !kind.Valid() {
			return fmt.Errorf("unknown request kind %q", kind)
		}
		if bytes.Equal(bytes.TrimSpace(payload), []byte("null")) {
			payload = json.RawMessage("{}")
		}
		r.Kind = kind
		r.Payload = payload
	}
	return nil
}

// SelectPayload filters show and export by an ID-set expression such as
// "0-3,5". Empty selects everything.
type SelectPayload struct {
	IDs string `json:"ids,omitempty"`
}

// AddPayload registers a new process. Optional fields left empty take their
// defaults.
type AddPayload struct {
	Name      string `json:"name"`
	Icon      string `json:"icon,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Notes     string `json:"notes,omitempty"`
	AddedDate string `json:"added_date,omitempty"`
}

// RemovePayload deletes the entry at ID.
type RemovePayload struct {
	ID int `json:"id"`
}

// OptionPayload is a partial interval update.
type OptionPayload = config.IntervalUpdate

// ChangePayload edits fields of the entry at ID. Nil fields are left alone.
type ChangePayload struct {
	ID        int     `json:"id"`
	Tracking  *bool   `json:"tracking,omitempty"`
	Icon      *string `json:"icon,omitempty"`
	Duration  *string `json:"duration,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	AddedDate *string `json:"added_date,omitempty"`
}

// Duration operations.
const (
	OperationAdd      = "add"
	OperationSubtract = "subtract"
)

// DurationPayload adjusts accumulated seconds of the entry at ID.
type DurationPayload struct {
	ID        int    `json:"id"`
	Operation string `json:"operation"`
	Seconds   uint64 `json:"seconds"`
}

// ImportPayload merges processes from a file readable by the daemon.
type ImportPayload struct {
	Path   string `json:"path"`
	Legacy bool   `json:"legacy,omitempty"`
}

// MovePayload repositions the entry at ID.
type MovePayload struct {
	ID        int    `json:"id"`
	Direction string `json:"direction"`
}

// Envelope is the response to every request: exactly one of Ok or Err.
type Envelope struct {
	Ok  *string `json:"Ok,omitempty"`
	Err *string `json:"Err,omitempty"`
}

// OK builds a success envelope.
func OK(msg string) Envelope { return Envelope{Ok: &msg} }

// Fail builds an error envelope.
func Fail(msg string) Envelope { return Envelope{Err: &msg} }

// RemoteError is a failure reported by the daemon in an Err envelope.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// Result unwraps the envelope into a message or a *RemoteError.
func (e Envelope) Result() (string, error) {
	switch {
	case e.Ok != nil && e.Err == nil:
		return *e.Ok, nil
	case e.Err != nil && e.Ok == nil:
		return "", &RemoteError{Message: *e.Err}
	default:
		return "", errors.New("malformed response: expected exactly one of Ok or Err")
	}
}
