package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// StdoutLogger writes one JSON object per line. Despite the name the output
// stream is configurable so the CLI can keep stdout free for reports.
type StdoutLogger struct {
	component string
	fields    []Field
	minLevel  int
	out       io.Writer
	mu        *sync.Mutex
}

var levels = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// NewStdoutLogger creates a logger printing to stdout. component is optional.
func NewStdoutLogger(component string) *StdoutLogger {
	return NewWriterLogger(component, os.Stdout, "debug")
}

// NewWriterLogger creates a logger printing to w, dropping entries below level.
// Unknown levels fall back to "info".
func NewWriterLogger(component string, w io.Writer, level string) *StdoutLogger {
	min, ok := levels[level]
	if !ok {
		min = levels["info"]
	}
	return &StdoutLogger{component: component, minLevel: min, out: w, mu: &sync.Mutex{}}
}

func (s *StdoutLogger) log(level string, msg string, fields ...Field) {
	if levels[level] < s.minLevel {
		return
	}
	type outEntry struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component,omitempty"`
		Time      string         `json:"time"`
		Fields    map[string]any `json:"fields,omitempty"`
	}
	m := make(map[string]any, len(s.fields)+len(fields))
	for _, f := range s.fields {
		m[f.Key] = f.Value
	}
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			m[f.Key] = err.Error()
			continue
		}
		m[f.Key] = f.Value
	}
	entry := outEntry{
		Level:     level,
		Msg:       msg,
		Component: s.component,
		Time:      time.Now().UTC().Format(time.RFC3339),
		Fields:    m,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	enc, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(s.out, "%s %s %v\n", level, msg, m)
		return
	}
	fmt.Fprintln(s.out, string(enc))
}

func (s *StdoutLogger) Debug(msg string, fields ...Field) {
	s.log("debug", msg, fields...)
}

func (s *StdoutLogger) Info(msg string, fields ...Field) {
	s.log("info", msg, fields...)
}

func (s *StdoutLogger) Warn(msg string, fields ...Field) {
	s.log("warn", msg, fields...)
}

func (s *StdoutLogger) Error(msg string, fields ...Field) {
	s.log("error", msg, fields...)
}

// With returns a child logger. A "component" field replaces the component name,
// everything else is carried on every entry.
func (s *StdoutLogger) With(fields ...Field) Logger {
	child := &StdoutLogger{
		component: s.component,
		fields:    append([]Field(nil), s.fields...),
		minLevel:  s.minLevel,
		out:       s.out,
		mu:        s.mu,
	}
	for _, f := range fields {
		if f.Key == "component" {
			if str, ok := f.Value.(string); ok {
				child.component = str
				continue
			}
		}
		child.fields = append(child.fields, f)
	}
	return child
}
