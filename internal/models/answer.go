package models

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

type AnswerKind int

const (
	AnswerAbsent AnswerKind = iota
	AnswerNull
	AnswerScalar
	AnswerList
	// AnswerMalformed marks a value that decoded but has no usable shape
	// (objects, nested lists). It never contributes to analytics.
	AnswerMalformed
)

// AnswerValue is a submitted answer: a single string or an ordered list of strings.
// Decoding never fails; values of the wrong shape become AnswerMalformed.
type AnswerValue struct {
	kind   AnswerKind
	scalar string
	list   []string
}

func Scalar(s string) AnswerValue { return AnswerValue{kind: AnswerScalar, scalar: s} }

func List(values ...string) AnswerValue {
	return AnswerValue{kind: AnswerList, list: append([]string(nil), values...)}
}

func Null() AnswerValue { return AnswerValue{kind: AnswerNull} }

func (v AnswerValue) Kind() AnswerKind { return v.kind }

// IsEmpty reports whether the value counts as "not answered":
// absent, null, "", an empty list, or malformed.
func (v AnswerValue) IsEmpty() bool {
	switch v.kind {
	case AnswerScalar:
		return v.scalar == ""
	case AnswerList:
		return len(v.list) == 0
	default:
		return true
	}
}

// Values flattens the answer: a scalar yields one element, a list yields each element.
func (v AnswerValue) Values() []string {
	switch v.kind {
	case AnswerScalar:
		return []string{v.scalar}
	case AnswerList:
		return append([]string(nil), v.list...)
	default:
		return nil
	}
}

// String formats the answer for tables and CSV cells; lists are joined with ", ".
func (v AnswerValue) String() string {
	switch v.kind {
	case AnswerScalar:
		return v.scalar
	case AnswerList:
		return strings.Join(v.list, ", ")
	default:
		return ""
	}
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case AnswerScalar:
		return json.Marshal(v.scalar)
	case AnswerList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return []byte("null"), nil
	}
}

func (v *AnswerValue) UnmarshalJSON(b []byte) error {
	*v = decodeJSONAnswer(b)
	return nil
}

func decodeJSONAnswer(b []byte) AnswerValue {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return AnswerValue{}
	}
	if bytes.Equal(b, []byte("null")) {
		return Null()
	}
	if s, ok := jsonScalar(b); ok {
		return Scalar(s)
	}
	if b[0] != '[' {
		return AnswerValue{kind: AnswerMalformed}
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return AnswerValue{kind: AnswerMalformed}
	}
	list := make([]string, 0, len(raw))
	for _, el := range raw {
		s, ok := jsonScalar(bytes.TrimSpace(el))
		if !ok {
			return AnswerValue{kind: AnswerMalformed}
		}
		list = append(list, s)
	}
	return AnswerValue{kind: AnswerList, list: list}
}

// jsonScalar reads strings, numbers and booleans as their string form.
func jsonScalar(b []byte) (string, bool) {
	if len(b) == 0 {
		return "", false
	}
	switch {
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false
		}
		return s, true
	case bytes.Equal(b, []byte("true")), bytes.Equal(b, []byte("false")):
		return string(b), true
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return "", false
		}
		return n.String(), true
	}
	return "", false
}

func (v AnswerValue) MarshalYAML() (any, error) {
	switch v.kind {
	case AnswerScalar:
		return v.scalar, nil
	case AnswerList:
		return v.list, nil
	default:
		return nil, nil
	}
}

func (v *AnswerValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			*v = Null()
			return nil
		}
		*v = Scalar(node.Value)
	case yaml.SequenceNode:
		list := make([]string, 0, len(node.Content))
		for _, el := range node.Content {
			if el.Kind != yaml.ScalarNode || el.ShortTag() == "!!null" {
				*v = AnswerValue{kind: AnswerMalformed}
				return nil
			}
			list = append(list, el.Value)
		}
		*v = AnswerValue{kind: AnswerList, list: list}
	default:
		*v = AnswerValue{kind: AnswerMalformed}
	}
	return nil
}
