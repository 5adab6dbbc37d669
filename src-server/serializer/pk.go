package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Primary keys arrive as JSON numbers or numeric strings ("event": "3").
// On failure the second value is the message for the field.
func ParsePK(raw json.RawMessage) (int64, string) {
	var value interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&value); err != nil {
		return 0, incorrectType("str")
	}

	switch v := value.(type) {
	case nil:
		return 0, msgNull
	case json.Number:
		id, err := strconv.ParseInt(v.String(), 10, 64)
		if err != nil {
			return 0, incorrectType("float")
		}
		return id, ""
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, incorrectType("str")
		}
		return id, ""
	case bool:
		return 0, incorrectType("bool")
	case []interface{}:
		return 0, incorrectType("list")
	default:
		return 0, incorrectType("dict")
	}
}

// Parses a JSON list of primary keys. Messages are keyed by the failing element.
func ParsePKList(raw json.RawMessage) ([]int64, string) {
	trimmedRaw := bytes.TrimSpace(raw)
	if bytes.Equal(trimmedRaw, []byte("null")) {
		return nil, msgNull
	}
	var items []json.RawMessage
	if err := json.Unmarshal(trimmedRaw, &items); err != nil {
		return nil, fmt.Sprintf("Expected a list of items but got type \"%s\".", jsonType(trimmedRaw))
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id, msg := ParsePK(item)
		if msg != "" {
			return nil, msg
		}
		ids = append(ids, id)
	}
	return ids, ""
}

func doesNotExist(id int64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}

func incorrectType(typ string) string {
	return fmt.Sprintf("Incorrect type. Expected pk value, received %s.", typ)
}

func jsonType(raw []byte) string {
	if len(raw) == 0 {
		return "str"
	}
	switch raw[0] {
	case '{':
		return "dict"
	case '"':
		return "str"
	case 't', 'f':
		return "bool"
	default:
		return "int"
	}
}
