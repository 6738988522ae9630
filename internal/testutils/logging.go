package testutils

import "sync"

// TestingT is the minimal slice of testing.T used by these helpers.
type TestingT interface {
	Errorf(format string, args ...any)
}

// FieldsToMap converts a slice of alternating key-value pairs to a map,
// flagging malformed entries on t.
func FieldsToMap(t TestingT, fields []any) map[string]any {
	fieldsMap := make(map[string]any)

	for i := 0; i < len(fields); i += 2 {
		if i+1 >= len(fields) {
			t.Errorf("malformed fields slice: missing value for key at index %d", i)
			continue
		}
		key, ok := fields[i].(string)
		if !ok {
			t.Errorf("malformed fields slice: key at index %d is not a string, got %T", i, fields[i])
			continue
		}
		fieldsMap[key] = fields[i+1]
	}

	return fieldsMap
}

// LogRecord is one captured log call.
type LogRecord struct {
	Level   string
	Message string
	Fields  []any
}

// CaptureLogger records log calls for assertions instead of writing them.
type CaptureLogger struct {
	mu      sync.Mutex
	Records []LogRecord
}

func (c *CaptureLogger) log(level, msg string, fields []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Records = append(c.Records, LogRecord{Level: level, Message: msg, Fields: fields})
}

func (c *CaptureLogger) Debug(msg string, fields ...any) { c.log("DEBUG", msg, fields) }
func (c *CaptureLogger) Info(msg string, fields ...any)  { c.log("INFO", msg, fields) }
func (c *CaptureLogger) Warn(msg string, fields ...any)  { c.log("WARN", msg, fields) }
func (c *CaptureLogger) Error(msg string, fields ...any) { c.log("ERROR", msg, fields) }

// ByLevel returns the captured records with the given level.
func (c *CaptureLogger) ByLevel(level string) []LogRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []LogRecord
	for _, r := range c.Records {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}
