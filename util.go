package jsonschema

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// jsonType returns the json type of given value v.
// Returns empty string if v is not a valid json value.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return ""
	}
}

// toFloat converts json number v to float64.
// Out of range json.Number values saturate to ±Inf.
func toFloat(v any) (float64, bool) {
	switch v := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil && !math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

// toRat converts json number v to exact rational.
// json.Number is converted from its decimal text, so no precision is lost.
func toRat(v any) (*big.Rat, bool) {
	switch v := v.(type) {
	case json.Number:
		return new(big.Rat).SetString(string(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		return new(big.Rat).SetFloat64(v), true
	case float32:
		return toRat(float64(v))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return new(big.Rat).SetString(fmt.Sprint(v))
	}
	return nil, false
}

// isInteger tells whether json number v has no fractional part.
func isInteger(v any) bool {
	switch v := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case json.Number:
		if _, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			return true
		}
		if f, err := strconv.ParseFloat(string(v), 64); err == nil {
			return f == math.Trunc(f)
		}
		r, ok := new(big.Rat).SetString(string(v))
		return ok && r.IsInt()
	}
	f, ok := toFloat(v)
	return ok && !math.IsInf(f, 0) && f == math.Trunc(f)
}

// equals tells if given two json values are equal or not.
// numbers are compared by value, so 1 equals 1.0.
func equals(v1, v2 any) bool {
	t1, t2 := jsonType(v1), jsonType(v2)
	if t1 == "" || t1 != t2 {
		return false
	}
	switch t1 {
	case "array":
		arr1, arr2 := v1.([]any), v2.([]any)
		if len(arr1) != len(arr2) {
			return false
		}
		for i := range arr1 {
			if !equals(arr1[i], arr2[i]) {
				return false
			}
		}
		return true
	case "object":
		obj1, obj2 := v1.(map[string]any), v2.(map[string]any)
		if len(obj1) != len(obj2) {
			return false
		}
		for k, v1 := range obj1 {
			v2, ok := obj2[k]
			if !ok || !equals(v1, v2) {
				return false
			}
		}
		return true
	case "number":
		f1, ok1 := toFloat(v1)
		f2, ok2 := toFloat(v2)
		if ok1 && ok2 && f1 != f2 {
			return false
		}
		r1, ok1 := toRat(v1)
		r2, ok2 := toRat(v2)
		return ok1 && ok2 && r1.Cmp(r2) == 0
	default:
		return v1 == v2
	}
}

func quote(s string) string {
	s = fmt.Sprintf("%q", s)
	s = strings.ReplaceAll(s, `\"`, `"`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s[1:len(s)-1] + "'"
}

// --

type jsonPointer string

// escape converts given token to valid json-pointer token
func escape(tok string) string {
	tok = strings.ReplaceAll(tok, "~", "~0")
	tok = strings.ReplaceAll(tok, "/", "~1")
	return tok
}

func unescape(tok string) (string, bool) {
	tilde := strings.IndexByte(tok, '~')
	if tilde == -1 {
		return tok, true
	}
	var sb strings.Builder
	for {
		sb.WriteString(tok[:tilde])
		tok = tok[tilde+1:]
		if tok == "" {
			return "", false
		}
		switch tok[0] {
		case '0':
			sb.WriteByte('~')
		case '1':
			sb.WriteByte('/')
		default:
			return "", false
		}
		tok = tok[1:]
		tilde = strings.IndexByte(tok, '~')
		if tilde == -1 {
			sb.WriteString(tok)
			break
		}
	}
	return sb.String(), true
}

func (ptr jsonPointer) append(tok string) jsonPointer {
	return jsonPointer(string(ptr) + "/" + escape(tok))
}

func (ptr jsonPointer) appendIndex(i int) jsonPointer {
	return jsonPointer(string(ptr) + "/" + strconv.Itoa(i))
}

// lookup returns the value at ptr inside doc.
func (ptr jsonPointer) lookup(doc any) (any, bool) {
	if ptr == "" {
		return doc, true
	}
	v := doc
	for _, tok := range strings.Split(string(ptr)[1:], "/") {
		tok, ok := unescape(tok)
		if !ok {
			return nil, false
		}
		switch x := v.(type) {
		case map[string]any:
			if v, ok = x[tok]; !ok {
				return nil, false
			}
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(x) {
				return nil, false
			}
			v = x[i]
		default:
			return nil, false
		}
	}
	return v, true
}

// --

func nonNegativeInt(v any) (int, bool) {
	if !isInteger(v) {
		return 0, false
	}
	f, _ := toFloat(v)
	if f < 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func stringSlice(v any) ([]string, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	s := make([]string, 0, len(arr))
	for _, item := range arr {
		str, ok := item.(string)
		if !ok {
			return nil, false
		}
		s = append(s, str)
	}
	return s, true
}
