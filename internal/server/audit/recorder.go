// Package audit appends security events to a durable, append-only log file
// and serves bounded tail reads over it. The subsystem only ever writes;
// nothing here mutates or truncates existing content.
package audit

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// tailChunkSize is how much is read per backward step in RecentEvents.
// Files smaller than one chunk degrade to a single full read.
const tailChunkSize = 4096

// Recorder writes one line per event: `<timestamp> : <message> k=v ...`.
// Appends from concurrent requests are serialized behind a mutex so writers
// never interleave partial lines.
type Recorder struct {
	mu   sync.Mutex
	path string
	file *os.File
	now  func() time.Time
}

func NewRecorder(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &Recorder{path: path, file: f, now: time.Now}, nil
}

// Event appends one structured line. The variadic args are key-value pairs
// folded into the message, e.g.:
//
//	rec.Event("login failure", "email", email, "ip", origin)
func (r *Recorder) Event(msg string, kv ...any) error {
	var b strings.Builder
	b.WriteString(r.now().Format(timeLayout))
	b.WriteString(" : ")
	b.WriteString(msg)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	b.WriteByte('\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.file.WriteString(b.String())
	return err
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.file.Close()
}

// RecentEvents returns at most n lines, newest first, by reading fixed-size
// chunks backward from the end of the file instead of scanning it entirely.
// A missing file yields no events, not an error.
func (r *Recorder) RecentEvents(n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat audit log: %w", err)
	}

	var (
		events []string
		carry  []byte // partial first line of the chunk, completed by the next step
		offset = st.Size()
	)

	for offset > 0 && len(events) < n {
		chunk := int64(tailChunkSize)
		if offset < chunk {
			chunk = offset
		}
		offset -= chunk

		buf := make([]byte, chunk, chunk+int64(len(carry)))
		if _, err := f.ReadAt(buf, offset); err != nil {
			return nil, fmt.Errorf("read audit log: %w", err)
		}
		buf = append(buf, carry...)

		lines := bytes.Split(buf, []byte{'\n'})
		carry = lines[0]

		for i := len(lines) - 1; i >= 1 && len(events) < n; i-- {
			if line := strings.TrimRight(string(lines[i]), "\r"); line != "" {
				events = append(events, line)
			}
		}
	}

	if offset == 0 && len(events) < n {
		if line := strings.TrimRight(string(carry), "\r"); line != "" {
			events = append(events, line)
		}
	}

	return events, nil
}
