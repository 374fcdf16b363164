package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is an entity identifier as sent by clients. Browser forms and socket
// clients send ids either as JSON numbers or as numeric strings; both decode
// here. The zero value means "not set".
type ID int64

// UnmarshalJSON accepts 12, "12", "" and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*id = ID(n)
	return nil
}

// ParseID parses a form or query value. An empty string yields 0.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" || s == "undefined" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return ID(n), nil
}

// Set reports whether the id carries a value.
func (id ID) Set() bool {
	return id > 0
}
