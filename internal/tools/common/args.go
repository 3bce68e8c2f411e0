// Package common holds the shared plumbing for tool handlers: request
// argument parsing, response shaping, the approval-gated dispatch
// contract, and instrumentation.
package common

import (
	"encoding/json"
	"fmt"
)

// StringArg returns a string argument, or "" when absent.
func StringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// RequiredStringArg returns a string argument or an error naming the
// missing field.
func RequiredStringArg(args map[string]interface{}, key string) (string, error) {
	v := StringArg(args, key)
	if v == "" {
		return "", fmt.Errorf("'%s' field is required", key)
	}
	return v, nil
}

// IntArg returns an integer argument, or fallback when absent. JSON
// numbers arrive as float64.
func IntArg(args map[string]interface{}, key string, fallback int64) int64 {
	switch v := args[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return fallback
}

// BoolArg returns a boolean argument, or false when absent.
func BoolArg(args map[string]interface{}, key string) bool {
	v, _ := args[key].(bool)
	return v
}

// StringSliceArg accepts either a single string or an array of
// strings for the key.
func StringSliceArg(args map[string]interface{}, key string) []string {
	switch v := args[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// ApprovalIDArg extracts the optional approval_id argument. Returns
// nil when the caller did not supply one.
func ApprovalIDArg(args map[string]interface{}) *int64 {
	switch v := args["approval_id"].(type) {
	case float64:
		id := int64(v)
		return &id
	case int64:
		return &v
	}
	return nil
}

// ObjectArg returns a JSON object argument, or nil when absent.
func ObjectArg(args map[string]interface{}, key string) map[string]interface{} {
	if v, ok := args[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}

// AsMap converts any JSON-marshalable value into a generic map. Used
// to snapshot results for the audit log.
func AsMap(v interface{}) map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{"value": fmt.Sprintf("%v", v)}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		// scalars and arrays are wrapped
		var any interface{}
		if json.Unmarshal(b, &any) == nil {
			return map[string]interface{}{"value": any}
		}
		return map[string]interface{}{"value": string(b)}
	}
	return m
}
