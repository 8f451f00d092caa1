// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// =============================================================================
// WIRE FORMAT
// =============================================================================

// Marker prefixes every event line on the wire.
const Marker = "data: "

// Kind classifies a content event.
type Kind int

const (
	// KindDelta carries an incremental piece of assistant text.
	KindDelta Kind = iota
	// KindDone signals the server finished the response.
	KindDone
)

// Event is one decoded content event.
type Event struct {
	Kind Kind
	// Text is the delta text. Empty for KindDone.
	Text string
}

// payload is the JSON body of a marked line.
type payload struct {
	Content  string `json:"content"`
	Metadata struct {
		FinishReason string `json:"finish_reason"`
	} `json:"metadata"`
}

// =============================================================================
// DECODER
// =============================================================================

// Decoder turns a raw response body into a sequence of events. A decoder
// is bound to one stream and is not restartable; create a new one for
// each response.
type Decoder struct {
	reader *bufio.Reader
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{reader: bufio.NewReader(r)}
}

// Next returns the next event. It returns io.EOF when the stream ends;
// a trailing line with no newline is discarded rather than parsed, since
// the transport may have been cut mid-line. Lines without the marker
// prefix are skipped.
func (d *Decoder) Next() (Event, error) {
	for {
		line, err := d.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// Incomplete trailing data is dropped.
				return Event{}, io.EOF
			}
			return Event{}, err
		}

		line = strings.TrimRight(line, "\r\n")
		if !strings.HasPrefix(line, Marker) {
			continue
		}
		return decodeLine(strings.TrimPrefix(line, Marker)), nil
	}
}

// decodeLine parses one marked payload. Older server versions emitted
// bare text after the marker, so malformed JSON is passed through as a
// delta instead of being dropped.
func decodeLine(raw string) Event {
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Event{Kind: KindDelta, Text: raw}
	}
	if p.Metadata.FinishReason != "" {
		return Event{Kind: KindDone}
	}
	return Event{Kind: KindDelta, Text: p.Content}
}

// Collect drains the decoder and returns all events. Intended for tests
// and non-interactive use; interactive callers should pump Next directly.
func (d *Decoder) Collect() ([]Event, error) {
	var events []Event
	for {
		ev, err := d.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
}
