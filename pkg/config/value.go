package config

import (
	"fmt"
	"strings"
)

// Kind discriminates the variants of a Value.
type Kind int

const (
	Scalar   Kind = iota // leaf key value, possibly absent
	Mapping              // named block contents, ordered and key-unique
	Sequence             // anonymous { ... } entries repeated inside one block
	Raw                  // verbatim rule script body
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Mapping:
		return "mapping"
	case Sequence:
		return "sequence"
	case Raw:
		return "raw"
	default:
		return "unknown"
	}
}

// Value is one node of the parsed configuration tree. Its kind is fixed at
// construction and the whole tree is read-only once Parse returns.
type Value struct {
	kind   Kind
	scalar string
	hasVal bool // distinguishes "key" alone from "key value"
	keys   []string
	fields map[string]*Value
	seq    []*Value
	raw    string
}

func newScalar(text string, present bool) *Value {
	return &Value{kind: Scalar, scalar: text, hasVal: present}
}

func newMapping(keys []string, fields map[string]*Value) *Value {
	if fields == nil {
		fields = map[string]*Value{}
	}
	return &Value{kind: Mapping, keys: keys, fields: fields}
}

func newSequence(items []*Value) *Value {
	return &Value{kind: Sequence, seq: items}
}

func newRaw(text string) *Value {
	return &Value{kind: Raw, raw: text}
}

// Kind returns the variant of this value. A nil value reads as an absent
// scalar, so lookups chain without nil checks.
func (v *Value) Kind() Kind {
	if v == nil {
		return Scalar
	}
	return v.kind
}

// Scalar returns the leaf text and whether a value token was present.
func (v *Value) Scalar() (string, bool) {
	if v == nil || v.kind != Scalar {
		return "", false
	}
	return v.scalar, v.hasVal
}

// Text returns the leaf text, empty when absent or not a scalar.
func (v *Value) Text() string {
	s, _ := v.Scalar()
	return s
}

// Get returns the named child of a mapping, nil when absent or when v is
// not a mapping.
func (v *Value) Get(key string) *Value {
	if v == nil || v.kind != Mapping {
		return nil
	}
	return v.fields[key]
}

// Path walks nested mappings by key, returning nil as soon as a step is
// missing.
func (v *Value) Path(keys ...string) *Value {
	cur := v
	for _, k := range keys {
		cur = cur.Get(k)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Keys returns a mapping's keys in declaration order.
func (v *Value) Keys() []string {
	if v == nil || v.kind != Mapping {
		return nil
	}
	return append([]string(nil), v.keys...)
}

// Seq returns the entries of a sequence.
func (v *Value) Seq() []*Value {
	if v == nil || v.kind != Sequence {
		return nil
	}
	return append([]*Value(nil), v.seq...)
}

// Raw returns the verbatim script body of a Raw value.
func (v *Value) Raw() string {
	if v == nil || v.kind != Raw {
		return ""
	}
	return v.raw
}

// Len returns the number of children (mapping fields or sequence entries).
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case Mapping:
		return len(v.keys)
	case Sequence:
		return len(v.seq)
	default:
		return 0
	}
}

// Tree is the root of a parsed configuration.
type Tree struct {
	root *Value
}

// Root returns the top-level mapping.
func (t *Tree) Root() *Value {
	if t == nil {
		return nil
	}
	return t.root
}

// Path walks from the root through nested mappings.
func (t *Tree) Path(keys ...string) *Value {
	return t.Root().Path(keys...)
}

// Format renders the tree back as indented block text. The output is for
// display only; it is not a faithful round-trip of the original dump.
func (t *Tree) Format() string {
	var b strings.Builder
	formatValue(&b, t.Root(), 0)
	return b.String()
}

func formatValue(b *strings.Builder, v *Value, indent int) {
	prefix := strings.Repeat("    ", indent)
	switch v.Kind() {
	case Mapping:
		for _, key := range v.keys {
			child := v.fields[key]
			switch child.Kind() {
			case Scalar:
				if s, ok := child.Scalar(); ok {
					fmt.Fprintf(b, "%s%s %s\n", prefix, key, s)
				} else {
					fmt.Fprintf(b, "%s%s\n", prefix, key)
				}
			case Raw:
				fmt.Fprintf(b, "%s%s {\n%s\n%s}\n", prefix, key, child.Raw(), prefix)
			default:
				if child.Len() == 0 {
					fmt.Fprintf(b, "%s%s { }\n", prefix, key)
					continue
				}
				fmt.Fprintf(b, "%s%s {\n", prefix, key)
				formatValue(b, child, indent+1)
				fmt.Fprintf(b, "%s}\n", prefix)
			}
		}
	case Sequence:
		for _, item := range v.seq {
			fmt.Fprintf(b, "%s{\n", prefix)
			formatValue(b, item, indent+1)
			fmt.Fprintf(b, "%s}\n", prefix)
		}
	}
}
