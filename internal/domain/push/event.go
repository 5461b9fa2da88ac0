// Package push describes the events the server fans out to subscribed
// clients and their wire form.
//
// A frame is a JSON invocation naming a client-side target and its
// arguments, e.g. {"target":"UpdateMarker","arguments":[42]}.
package push

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is the name of the client-side handler an event invokes.
type Kind string

const (
	KindAdd    Kind = "AddMarker"
	KindUpdate Kind = "UpdateMarker"
	KindDelete Kind = "DeleteMarker"
)

var (
	ErrUnknownKind = errors.New("unknown event kind")
	ErrMalformed   = errors.New("malformed push frame")
)

func (k Kind) Valid() bool {
	switch k {
	case KindAdd, KindUpdate, KindDelete:
		return true
	}
	return false
}

// Event names a single marker that changed on the server.
type Event struct {
	Kind     Kind
	MarkerID int
}

func Add(id int) Event    { return Event{Kind: KindAdd, MarkerID: id} }
func Update(id int) Event { return Event{Kind: KindUpdate, MarkerID: id} }
func Delete(id int) Event { return Event{Kind: KindDelete, MarkerID: id} }

func (e Event) String() string {
	return fmt.Sprintf("%s(%d)", e.Kind, e.MarkerID)
}

type invocation struct {
	Target    Kind              `json:"target"`
	Arguments []json.RawMessage `json:"arguments"`
}

// Encode returns the frame for e.
func Encode(e Event) ([]byte, error) {
	if !e.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	arg, err := json.Marshal(e.MarkerID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(invocation{Target: e.Kind, Arguments: []json.RawMessage{arg}})
}

// Decode parses a frame. The first argument must be an integer marker ID.
func Decode(data []byte) (Event, error) {
	var inv invocation
	if err := json.Unmarshal(data, &inv); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if !inv.Target.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrUnknownKind, inv.Target)
	}
	if len(inv.Arguments) == 0 {
		return Event{}, fmt.Errorf("%w: %s without arguments", ErrMalformed, inv.Target)
	}

	var id int
	if err := json.Unmarshal(inv.Arguments[0], &id); err != nil {
		return Event{}, fmt.Errorf("%w: marker id: %v", ErrMalformed, err)
	}

	return Event{Kind: inv.Target, MarkerID: id}, nil
}
