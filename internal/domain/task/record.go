package task

import (
	"encoding/json"
	"fmt"

	"cosme/crawler/internal/domain"
)

// Stream message field names
const (
	TypeField = "task_type"
	DataField = "task_data"
)

// Task is a payload published to a stream with its type tag
type Task interface {
	TaskType() string
}

// RecordTask carries one extracted product record to a stream consumer
type RecordTask struct {
	domain.ProductRecord
	CrawledAt int64 `json:"crawled_at"` // unix seconds
}

func (t *RecordTask) TaskType() string {
	return "ProductRecord"
}

// Values renders a task as stream message fields
func Values(t Task) (map[string]interface{}, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s task: %w", t.TaskType(), err)
	}

	return map[string]interface{}{
		TypeField: t.TaskType(),
		DataField: string(data),
	}, nil
}

// Decode is the consumer half of Values: readers of the record stream
// (XREAD / XREADGROUP on redis.stream) use it to turn message fields back
// into a task, checking the type tag
func Decode[T Task](values map[string]interface{}) (T, error) {
	var t T

	data, ok := values[DataField].(string)
	if !ok {
		return t, fmt.Errorf("message has no %s field", DataField)
	}
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return t, fmt.Errorf("failed to decode task: %w", err)
	}
	if taskType, _ := values[TypeField].(string); taskType != t.TaskType() {
		return t, fmt.Errorf("unexpected task type %q, want %q", taskType, t.TaskType())
	}
	return t, nil
}
