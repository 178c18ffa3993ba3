package plugin

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindBytes
	KindList
	KindMap
)

func parseKind(s string) (Kind, error) {
	for k := KindNull; k <= KindMap; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return KindNull, fmt.Errorf("unknown value kind %q", s)
}

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "null"
	}
}

// Value is a tagged variant exchanged between plugins and the host in place
// of untyped argument and result lists. The zero Value is Null.
type Value struct {
	kind  Kind
	str   string
	num   int64
	float float64
	flag  bool
	bytes []byte
	list  []Value
	dict  map[string]Value
}

func Null() Value               { return Value{} }
func String(s string) Value     { return Value{kind: KindString, str: s} }
func Int(n int64) Value         { return Value{kind: KindInt, num: n} }
func Float(f float64) Value     { return Value{kind: KindFloat, float: f} }
func Bool(b bool) Value         { return Value{kind: KindBool, flag: b} }
func List(items ...Value) Value { return Value{kind: KindList, list: append([]Value(nil), items...)} }

// Bytes copies b into a new Value.
func Bytes(b []byte) Value {
	return Value{kind: KindBytes, bytes: append([]byte(nil), b...)}
}

// Map copies m into a new Value.
func Map(m map[string]Value) Value {
	dict := make(map[string]Value, len(m))
	for k, v := range m {
		dict[k] = v
	}
	return Value{kind: KindMap, dict: dict}
}

// ValueOf converts common Go values into a Value. Every integer type becomes
// an Int except unsigned values above math.MaxInt64, which are kept as their
// decimal String. Unsupported types are rendered with fmt and stored as
// strings.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint8:
		return Int(int64(x))
	case uint16:
		return Int(int64(x))
	case uint32:
		return Int(int64(x))
	case uint:
		return unsignedValue(uint64(x))
	case uint64:
		return unsignedValue(x)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case []byte:
		return Bytes(x)
	case []Value:
		return List(x...)
	case []any:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = ValueOf(item)
		}
		return List(items...)
	case []string:
		items := make([]Value, len(x))
		for i, item := range x {
			items[i] = String(item)
		}
		return List(items...)
	case map[string]Value:
		return Map(x)
	case map[string]any:
		dict := make(map[string]Value, len(x))
		for k, item := range x {
			dict[k] = ValueOf(item)
		}
		return Value{kind: KindMap, dict: dict}
	case map[string]string:
		dict := make(map[string]Value, len(x))
		for k, item := range x {
			dict[k] = String(item)
		}
		return Value{kind: KindMap, dict: dict}
	case fmt.Stringer:
		return String(x.String())
	default:
		return String(fmt.Sprint(x))
	}
}

func unsignedValue(n uint64) Value {
	if n > math.MaxInt64 {
		return String(strconv.FormatUint(n, 10))
	}
	return Int(int64(n))
}

// Values converts each argument with ValueOf.
func Values(args ...any) []Value {
	out := make([]Value, len(args))
	for i, a := range args {
		out[i] = ValueOf(a)
	}
	return out
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }
func (v Value) AsInt() (int64, bool)     { return v.num, v.kind == KindInt }
func (v Value) AsBool() (bool, bool)     { return v.flag, v.kind == KindBool }

// AsFloat also accepts Int values.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.float, true
	case KindInt:
		return float64(v.num), true
	}
	return 0, false
}

func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return append([]byte(nil), v.bytes...), true
}

func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return append([]Value(nil), v.list...), true
}

func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	out := make(map[string]Value, len(v.dict))
	for k, item := range v.dict {
		out[k] = item
	}
	return out, true
}

// Field returns the entry key of a Map value.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	item, ok := v.dict[key]
	return item, ok
}

// Interface returns the plain Go representation, used for logging and JSON.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		return v.float
	case KindBool:
		return v.flag
	case KindBytes:
		return append([]byte(nil), v.bytes...)
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.dict))
		for k, item := range v.dict {
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal reports deep equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindInt:
		return v.num == o.num
	case KindFloat:
		return v.float == o.float
	case KindBool:
		return v.flag == o.flag
	case KindBytes:
		return string(v.bytes) == string(o.bytes)
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.dict) != len(o.dict) {
			return false
		}
		for k, item := range v.dict {
			other, ok := o.dict[k]
			if !ok || !item.Equal(other) {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindString:
		return v.str
	case KindBytes:
		return fmt.Sprintf("bytes[%d]", len(v.bytes))
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		keys := make([]string, 0, len(v.dict))
		for k := range v.dict {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + v.dict[k].String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(v.Interface())
	}
}

// Interfaces converts a slice of Values for logging.
func Interfaces(values []Value) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v.Interface()
	}
	return out
}

type wireValue struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON encodes v together with its kind, so Int, Float and Bytes
// survive a round trip.
func (v Value) MarshalJSON() ([]byte, error) {
	var payload any
	switch v.kind {
	case KindNull:
		return json.Marshal(wireValue{Kind: v.kind.String()})
	case KindString:
		payload = v.str
	case KindInt:
		payload = v.num
	case KindFloat:
		payload = v.float
	case KindBool:
		payload = v.flag
	case KindBytes:
		payload = v.bytes
	case KindList:
		list := v.list
		if list == nil {
			list = []Value{}
		}
		payload = list
	case KindMap:
		dict := v.dict
		if dict == nil {
			dict = map[string]Value{}
		}
		payload = dict
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s value: %w", v.kind, err)
	}
	return json.Marshal(wireValue{Kind: v.kind.String(), Value: raw})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind, err := parseKind(w.Kind)
	if err != nil {
		return err
	}
	if kind == KindNull {
		*v = Null()
		return nil
	}
	if len(w.Value) == 0 {
		return fmt.Errorf("%s value has no payload", kind)
	}

	var out Value
	switch kind {
	case KindString:
		var s string
		err = json.Unmarshal(w.Value, &s)
		out = String(s)
	case KindInt:
		var n int64
		err = json.Unmarshal(w.Value, &n)
		out = Int(n)
	case KindFloat:
		var f float64
		err = json.Unmarshal(w.Value, &f)
		out = Float(f)
	case KindBool:
		var b bool
		err = json.Unmarshal(w.Value, &b)
		out = Bool(b)
	case KindBytes:
		var b []byte
		err = json.Unmarshal(w.Value, &b)
		out = Value{kind: KindBytes, bytes: b}
	case KindList:
		var list []Value
		err = json.Unmarshal(w.Value, &list)
		out = Value{kind: KindList, list: list}
	case KindMap:
		var dict map[string]Value
		err = json.Unmarshal(w.Value, &dict)
		if dict == nil {
			dict = map[string]Value{}
		}
		out = Value{kind: KindMap, dict: dict}
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s value: %w", kind, err)
	}

	*v = out
	return nil
}
