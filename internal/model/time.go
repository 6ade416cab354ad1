package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// JSTime 以毫秒精度的 ISO-8601 UTC 字符串序列化时间，与浏览器 Date#toJSON 的格式一致。
// 反序列化时也接受毫秒时间戳和 null。
type JSTime time.Time

const jsTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// MarshalJSON implements the json.Marshaler interface.
func (t JSTime) MarshalJSON() ([]byte, error) {
	formatted := fmt.Sprintf("\"%s\"", time.Time(t).UTC().Format(jsTimeFormat))
	return []byte(formatted), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *JSTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = JSTime{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		*t = JSTime(parsed)
		return nil
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", string(data), err)
	}
	*t = JSTime(time.UnixMilli(ms))
	return nil
}

// Time 返回 UTC 的 time.Time。
func (t JSTime) Time() time.Time {
	return time.Time(t).UTC()
}
