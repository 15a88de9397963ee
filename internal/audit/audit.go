package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alexanderramin/buildtrack/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	ActionStatusUpdated = "Updated Project Status"
	ActionSpendUpdated  = "Updated Project Spend"
	ActionProjectCreate = "Created Project"
	ActionProjectUpdate = "Updated Project"
	ActionProjectDelete = "Deleted Project"
	ActionManagerAssign = "Assigned Project Manager"
)

// Entry is one line of the audit trail.
type Entry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	Role      string    `json:"role"`
	ProjectID int64     `json:"project_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Time      time.Time `json:"time"`
}

func NewEntry(action string, actor domain.Principal, projectID int64, detail string) Entry {
	return Entry{
		Action:    action,
		UserID:    actor.UserID,
		UserName:  actor.UserName,
		Role:      string(actor.Role),
		ProjectID: projectID,
		Detail:    detail,
	}
}

// Log records actions after they have been committed.
type Log interface {
	Append(entry Entry) error
}

type NopLog struct{}

func (NopLog) Append(Entry) error { return nil }

// FileLog appends one JSON object per entry to a file.
type FileLog struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
	open func(path string) (io.WriteCloser, error)
}

func NewFileLog(path string) *FileLog {
	return &FileLog{path: path, now: time.Now, open: openAppend}
}

func openAppend(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return f, nil
}

// errWriter remembers the first write error, which zerolog does not report.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	n, err := e.w.Write(p)
	if err != nil && e.err == nil {
		e.err = err
	}
	return n, err
}

func (l *FileLog) Path() string { return l.path }

func (l *FileLog) Append(entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Time.IsZero() {
		entry.Time = l.now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.open(l.path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := &errWriter{w: f}
	zl := zerolog.New(w)
	zl.Log().
		Str("id", entry.ID).
		Str("action", entry.Action).
		Int64("user_id", entry.UserID).
		Str("user_name", entry.UserName).
		Str("role", entry.Role).
		Int64("project_id", entry.ProjectID).
		Str("detail", entry.Detail).
		Time("time", entry.Time).
		Send()
	if w.err != nil {
		return fmt.Errorf("writing audit entry: %w", w.err)
	}
	return nil
}

// ReadAll returns every entry in the log, oldest first. A missing file is an
// empty log.
func (l *FileLog) ReadAll() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			return nil, fmt.Errorf("audit log line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return entries, nil
}
