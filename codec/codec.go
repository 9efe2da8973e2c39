// Package codec implements the self-describing, forward-compatible wire
// format used for persisted cross-campaign state (§6 "Persisted state
// layout") and replay capsules: a version prefix followed by tagged
// sections, generalized from a single versioned JSON object into an
// ordered list of named sections, each holding its own JSON payload, so
// unknown sections can be carried forward without breaking older readers.
package codec

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// Version identifies the codec's own framing format, distinct from the
// version of any individual section's payload.
type Version uint16

// CurrentVersion is the only framing version this package writes.
const CurrentVersion Version = 1

// Section is one named, independently encoded chunk of an Envelope.
type Section struct {
	Name    string
	Payload []byte
}

// Envelope is the top-level persisted artifact: a framing version plus an
// ordered list of sections. Unknown section names are preserved on
// round-trip so a newer writer's sections survive being read by older
// code, and an older writer's envelope can be extended by a newer reader
// without migration.
type Envelope struct {
	Version  Version
	Sections []Section
}

// Marshal encodes a value as a section's JSON payload.
func Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes a section's JSON payload into v.
func Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// Put adds or replaces the section named name in the envelope.
func (e *Envelope) Put(name string, v interface{}) error {
	payload, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("codec: marshal section %q: %w", name, err)
	}
	for i := range e.Sections {
		if e.Sections[i].Name == name {
			e.Sections[i].Payload = payload
			return nil
		}
	}
	e.Sections = append(e.Sections, Section{Name: name, Payload: payload})
	return nil
}

// Get decodes the section named name into v. It returns false if the
// section is absent, which callers treat as "unknown section ignored" per
// §6's forward-compatibility requirement.
func (e *Envelope) Get(name string, v interface{}) (bool, error) {
	for _, s := range e.Sections {
		if s.Name == name {
			if err := Unmarshal(s.Payload, v); err != nil {
				return true, fmt.Errorf("codec: unmarshal section %q: %w", name, err)
			}
			return true, nil
		}
	}
	return false, nil
}

// Encode writes the envelope as: a 2-byte big-endian version, then for
// each section a 2-byte name length, the name, a 4-byte payload length,
// and the payload.
func Encode(e Envelope) ([]byte, error) {
	var buf []byte
	var head [2]byte
	binary.BigEndian.PutUint16(head[:], uint16(e.Version))
	buf = append(buf, head[:]...)
	for _, s := range e.Sections {
		if len(s.Name) > 0xFFFF {
			return nil, fmt.Errorf("codec: section name %q too long", s.Name)
		}
		var nameLen [2]byte
		binary.BigEndian.PutUint16(nameLen[:], uint16(len(s.Name)))
		buf = append(buf, nameLen[:]...)
		buf = append(buf, s.Name...)
		var payloadLen [4]byte
		binary.BigEndian.PutUint32(payloadLen[:], uint32(len(s.Payload)))
		buf = append(buf, payloadLen[:]...)
		buf = append(buf, s.Payload...)
	}
	return buf, nil
}

// Decode parses bytes written by Encode. A version it does not recognize
// is rejected; a recognized version with sections it does not understand
// is accepted as-is, leaving unrecognized sections in e.Sections for the
// caller to ignore.
func Decode(data []byte) (Envelope, error) {
	if len(data) < 2 {
		return Envelope{}, fmt.Errorf("codec: truncated envelope header")
	}
	v := Version(binary.BigEndian.Uint16(data[:2]))
	if v != CurrentVersion {
		return Envelope{}, fmt.Errorf("codec: unsupported envelope version %d", v)
	}
	e := Envelope{Version: v}
	rest := data[2:]
	for len(rest) > 0 {
		if len(rest) < 2 {
			return Envelope{}, fmt.Errorf("codec: truncated section name length")
		}
		nameLen := int(binary.BigEndian.Uint16(rest[:2]))
		rest = rest[2:]
		if len(rest) < nameLen {
			return Envelope{}, fmt.Errorf("codec: truncated section name")
		}
		name := string(rest[:nameLen])
		rest = rest[nameLen:]
		if len(rest) < 4 {
			return Envelope{}, fmt.Errorf("codec: truncated section payload length")
		}
		payloadLen := int(binary.BigEndian.Uint32(rest[:4]))
		rest = rest[4:]
		if len(rest) < payloadLen {
			return Envelope{}, fmt.Errorf("codec: truncated section payload")
		}
		e.Sections = append(e.Sections, Section{Name: name, Payload: append([]byte(nil), rest[:payloadLen]...)})
		rest = rest[payloadLen:]
	}
	return e, nil
}
