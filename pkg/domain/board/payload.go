package board

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

var (
	// ErrInvalidPayload is returned when a CFD payload does not match the expected shape.
	ErrInvalidPayload = errors.New("invalid board payload")
	// ErrInvalidTimestamp is returned when a columnChanges key is not epoch milliseconds.
	ErrInvalidTimestamp = errors.New("invalid transition timestamp")
)

// ColumnDescriptor is a column entry of the raw payload.
type ColumnDescriptor struct {
	Name string `json:"name"`
}

// Move is one per-issue column change. ColumnTo marks an enter; a move that
// only carries ColumnFrom is an exit from the board.
type Move struct {
	Key        string `json:"key"`
	ColumnTo   *int   `json:"columnTo,omitempty"`
	ColumnFrom *int   `json:"columnFrom,omitempty"`
	StatusTo   string `json:"statusTo,omitempty"`
}

// Payload is the cumulative-flow document returned by the board API:
// columns by position and moves keyed by string-encoded epoch milliseconds.
type Payload struct {
	Columns       []ColumnDescriptor `json:"columns"`
	ColumnChanges map[string][]Move  `json:"columnChanges"`
}

// Schema returns the column schema described by the payload.
func (p *Payload) Schema() Schema {
	if p == nil {
		return Schema{}
	}
	names := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		names[i] = strings.ToUpper(strings.TrimSpace(c.Name))
	}
	return NewSchema(names...)
}

const payloadSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "columns": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": { "name": { "type": "string" } }
      }
    },
    "columnChanges": {
      "type": "object",
      "patternProperties": {
        "^[0-9]+$": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["key"],
            "properties": {
              "key": { "type": "string" },
              "columnTo": { "type": "integer" },
              "columnFrom": { "type": "integer" }
            }
          }
        }
      },
      "additionalProperties": false
    }
  }
}`

var payloadSchemaLoader = gojsonschema.NewStringLoader(payloadSchemaJSON)

// DecodePayload validates and decodes a raw CFD document. An empty document
// decodes to an empty payload.
func DecodePayload(data []byte) (*Payload, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &Payload{}, nil
	}

	result, err := gojsonschema.Validate(payloadSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(msgs, "; "))
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &p, nil
}

// BuildTransitionLog flattens the payload's moves into a time-ordered log.
// Moves that share a timestamp keep their payload order. Exits are recorded
// with Kind Exit; moves naming neither a destination nor an origin are
// dropped. Column indices are passed through unresolved.
func BuildTransitionLog(p *Payload) (TransitionLog, error) {
	if p == nil || len(p.ColumnChanges) == 0 {
		return TransitionLog{}, nil
	}

	type stamped struct {
		ms  int64
		raw string
	}
	stamps := make([]stamped, 0, len(p.ColumnChanges))
	for raw := range p.ColumnChanges {
		ms, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
		}
		stamps = append(stamps, stamped{ms: ms, raw: raw})
	}
	sort.Slice(stamps, func(i, j int) bool {
		if stamps[i].ms != stamps[j].ms {
			return stamps[i].ms < stamps[j].ms
		}
		return stamps[i].raw < stamps[j].raw
	})

	log := make(TransitionLog, 0)
	for _, s := range stamps {
		at := time.UnixMilli(s.ms)
		for _, m := range p.ColumnChanges[s.raw] {
			switch {
			case m.ColumnTo != nil:
				log = append(log, EnterColumn(m.Key, at, *m.ColumnTo))
			case m.ColumnFrom != nil:
				log = append(log, ExitBoard(m.Key, at))
			}
		}
	}
	return log, nil
}
