package transcript

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/set-night/avquote/internal/domain"
)

const (
	dataPrefix = "data: "
	doneMarker = "[DONE]"
)

// ErrTruncated is returned when the stream ends before the [DONE] sentinel.
var ErrTruncated = errors.New("stream ended before [DONE]")

// Event is the JSON payload of one data line.
type Event struct {
	Content string              `json:"content,omitempty"`
	Message *domain.ChatMessage `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// Decoder reads "data: {...}" events. Payloads that fail to decode are
// skipped; the stream itself only fails on read errors or truncation.
type Decoder struct {
	scanner *bufio.Scanner
	done    bool
	final   *domain.ChatMessage
}

func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Decoder{scanner: sc}
}

// Recv returns the next non-empty content fragment, or io.EOF after [DONE].
func (d *Decoder) Recv() (string, error) {
	if d.done {
		return "", io.EOF
	}
	for d.scanner.Scan() {
		line := strings.TrimRight(d.scanner.Text(), "\r")
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
		if payload == doneMarker {
			d.done = true
			return "", io.EOF
		}

		var ev Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			continue
		}
		if ev.Message != nil {
			d.final = ev.Message
		}
		if ev.Error != "" {
			return "", fmt.Errorf("%w: %s", domain.ErrUpstream, ev.Error)
		}
		if ev.Content != "" {
			return ev.Content, nil
		}
	}
	if err := d.scanner.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}
	return "", ErrTruncated
}

// Final is the finalized message announced by the server, if any.
func (d *Decoder) Final() *domain.ChatMessage {
	return d.final
}

func writeEvent(w io.Writer, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s%s\n\n", dataPrefix, b)
	return err
}

func WriteFragment(w io.Writer, content string) error {
	return writeEvent(w, Event{Content: content})
}

func WriteMessage(w io.Writer, msg *domain.ChatMessage) error {
	return writeEvent(w, Event{Message: msg})
}

func WriteError(w io.Writer, message string) error {
	return writeEvent(w, Event{Error: message})
}

func WriteDone(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s%s\n\n", dataPrefix, doneMarker)
	return err
}
