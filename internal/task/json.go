package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Serialize encodes tasks as a JSON array indented with four spaces and a
// trailing newline. HTML characters are written unescaped.
func Serialize(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(tasks); err != nil {
		return nil, fmt.Errorf("failed to marshal tasks: %w", err)
	}
	return buf.Bytes(), nil
}

// Parse decodes a JSON array of task records. Empty or whitespace-only input
// (and a bare null) returns an empty collection.
func Parse(data []byte) ([]Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Task{}, nil
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

var errNullRecord = errors.New("task record is null")

// UnmarshalJSON decodes a task record, tracking which fields are present.
func (t *Task) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errNullRecord
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*t = Task{}

	if raw, ok := fields[keyDescription]; ok {
		if s, ok := decodeString(raw); ok {
			t.Description = s
			delete(fields, keyDescription)
		} else {
			t.Description = string(raw)
		}
	} else {
		t.missingDescription = true
	}

	if raw, ok := fields[keyStatus]; ok {
		if s, ok := decodeString(raw); ok {
			t.Status = Status(s)
			delete(fields, keyStatus)
		} else {
			t.Status = Status(raw)
		}
	} else {
		t.missingStatus = true
	}

	if len(fields) > 0 {
		t.extra = fields
	}
	return nil
}

// decodeString reports whether raw is a JSON string and returns its value.
// A null is not a string and must be kept as written.
func decodeString(raw json.RawMessage) (string, bool) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// MarshalJSON encodes the task with description and status first and any
// other keys after them in sorted order. Absent fields are omitted.
func (t Task) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0

	write := func(key string, value []byte) {
		if n > 0 {
			buf.WriteByte(',')
		}
		n++
		buf.Write(encodeString(key))
		buf.WriteByte(':')
		buf.Write(value)
	}

	if raw, ok := t.extra[keyDescription]; ok {
		write(keyDescription, raw)
	} else if !t.missingDescription {
		write(keyDescription, encodeString(t.Description))
	}

	if raw, ok := t.extra[keyStatus]; ok {
		write(keyStatus, raw)
	} else if !t.missingStatus {
		write(keyStatus, encodeString(string(t.Status)))
	}

	keys := make([]string, 0, len(t.extra))
	for k := range t.extra {
		if k == keyDescription || k == keyStatus {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		write(k, t.extra[k])
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeString returns s as a JSON string literal without HTML escaping.
func encodeString(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return bytes.TrimRight(buf.Bytes(), "\n")
}
