// Package config implements the BigIP configuration dump parser and the
// hierarchical value model it produces.
package config

import (
	"fmt"
	"strings"
)

// blockBuilder accumulates one block's contents while it is open. The
// block's final shape is decided by the first child observed: an anonymous
// child arriving while the block is still empty turns it into a sequence,
// and the decision is permanent.
type blockBuilder struct {
	isSeq  bool
	keys   []string
	fields map[string]*entry
	items  []*blockBuilder
}

// entry is a mapping slot: either a finished value (scalar, raw script,
// explicit empty block) or a nested block builder.
type entry struct {
	val   *Value
	child *blockBuilder
}

func newBlockBuilder() *blockBuilder {
	return &blockBuilder{fields: map[string]*entry{}}
}

// vivify walks intermediate path tokens, creating empty mapping levels as
// needed, and returns the builder the final key belongs to.
func (b *blockBuilder) vivify(path []string) (*blockBuilder, error) {
	cur := b
	for _, key := range path {
		if cur.isSeq {
			return nil, fmt.Errorf("cannot open block %q inside a list block", key)
		}
		e, ok := cur.fields[key]
		if !ok {
			e = &entry{child: newBlockBuilder()}
			cur.fields[key] = e
			cur.keys = append(cur.keys, key)
		}
		if e.child == nil {
			return nil, fmt.Errorf("config path element %q is not a block", key)
		}
		cur = e.child
	}
	return cur, nil
}

// put stores a mapping slot, overwriting any previous definition while
// keeping the key's original position.
func (b *blockBuilder) put(key string, e *entry) error {
	if b.isSeq {
		return fmt.Errorf("keyed entry %q in a list block", key)
	}
	if _, ok := b.fields[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.fields[key] = e
	return nil
}

// markSeq converts an empty mapping into a sequence. Conversion is only
// legal while no keyed entry has been stored.
func (b *blockBuilder) markSeq() error {
	if b.isSeq {
		return nil
	}
	if len(b.keys) > 0 {
		return fmt.Errorf("anonymous block in a keyed block")
	}
	b.isSeq = true
	return nil
}

// attachChild attaches a completed named block. Some exports repeat a
// block definition with "members none" after the real one; the placeholder
// is dropped and the first definition kept. This silently discards the
// second definition and is a compatibility heuristic, not a verified
// semantic rule.
func (b *blockBuilder) attachChild(key string, child *blockBuilder) error {
	if _, ok := b.fields[key]; ok && child.isPlaceholder() {
		return nil
	}
	return b.put(key, &entry{child: child})
}

func (b *blockBuilder) isPlaceholder() bool {
	if b.isSeq {
		return false
	}
	e := b.fields["members"]
	return e != nil && e.val != nil && e.val.kind == Scalar && e.val.scalar == "none"
}

func (b *blockBuilder) finish() *Value {
	if b.isSeq {
		items := make([]*Value, len(b.items))
		for i, it := range b.items {
			items[i] = it.finish()
		}
		return newSequence(items)
	}
	fields := make(map[string]*Value, len(b.keys))
	for _, k := range b.keys {
		e := b.fields[k]
		if e.val != nil {
			fields[k] = e.val
		} else {
			fields[k] = e.child.finish()
		}
	}
	return newMapping(append([]string(nil), b.keys...), fields)
}

// frame is one level of the parse stack; stack depth equals brace depth.
type frame struct {
	b      *blockBuilder
	parent *blockBuilder // attach target on close, nil for the root
	key    string        // key within parent for named blocks
	anon   bool
}

// Parse consumes the source line by line and builds the configuration
// tree. It fails on the first structural error; no partial tree is
// returned.
func Parse(src *Source) (*Tree, error) {
	root := newBlockBuilder()
	stack := []*frame{{b: root}}

	for {
		raw, ok := src.Next()
		if !ok {
			break
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		top := stack[len(stack)-1]

		switch {
		case line == "{":
			// Anonymous list entry.
			if err := top.b.markSeq(); err != nil {
				return nil, &SyntaxError{Line: src.Line(), Err: err}
			}
			stack = append(stack, &frame{b: newBlockBuilder(), parent: top.b, anon: true})

		case line == "}":
			if len(stack) == 1 {
				return nil, &SyntaxError{Line: src.Line(), Err: fmt.Errorf("unexpected '}'")}
			}
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if f.anon {
				f.parent.items = append(f.parent.items, f.b)
			} else if err := f.parent.attachChild(f.key, f.b); err != nil {
				return nil, &SyntaxError{Line: src.Line(), Err: err}
			}

		case strings.HasSuffix(line, "{ }"):
			// Explicitly empty named block.
			path := strings.Fields(strings.TrimSuffix(line, "{ }"))
			if len(path) == 0 {
				return nil, &SyntaxError{Line: src.Line(), Err: fmt.Errorf("empty block with no name")}
			}
			nav, err := top.b.vivify(path[:len(path)-1])
			if err == nil {
				err = nav.put(path[len(path)-1], &entry{val: newMapping(nil, nil)})
			}
			if err != nil {
				return nil, &SyntaxError{Line: src.Line(), Err: err}
			}

		case strings.HasSuffix(line, "{"):
			path := strings.Fields(strings.TrimSuffix(line, "{"))
			if len(path) == 0 {
				return nil, &SyntaxError{Line: src.Line(), Err: fmt.Errorf("block with no name")}
			}
			nav, err := top.b.vivify(path[:len(path)-1])
			if err != nil {
				return nil, &SyntaxError{Line: src.Line(), Err: err}
			}
			key := path[len(path)-1]
			if isRulePath(path) {
				// Rule bodies are scripts with free-form braces; capture
				// verbatim instead of parsing.
				body, err := captureRule(src)
				if err != nil {
					return nil, err
				}
				if err := nav.put(key, &entry{val: newRaw(body)}); err != nil {
					return nil, &SyntaxError{Line: src.Line(), Err: err}
				}
				continue
			}
			stack = append(stack, &frame{b: newBlockBuilder(), parent: nav, key: key})

		default:
			key, rest, hasVal := splitKeyValue(line)
			if !hasVal {
				if err := top.b.put(key, &entry{val: newScalar("", false)}); err != nil {
					return nil, &SyntaxError{Line: src.Line(), Err: err}
				}
				continue
			}
			if strings.Contains(rest, `"`) {
				rest, ok = captureQuoted(src, rest)
				if !ok {
					return nil, &SyntaxError{Line: src.Line(), Err: ErrUnterminatedField}
				}
			}
			if err := top.b.put(key, &entry{val: newScalar(rest, true)}); err != nil {
				return nil, &SyntaxError{Line: src.Line(), Err: err}
			}
		}
	}

	if len(stack) > 1 {
		return nil, &SyntaxError{Line: src.Line(), Err: ErrUnterminatedBlock}
	}
	return &Tree{root: root.finish()}, nil
}

// ParseFile reads, decodes and parses a configuration dump.
func ParseFile(path string) (*Tree, error) {
	src, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(src)
}

// ParseString parses in-memory configuration text.
func ParseString(text string) (*Tree, error) {
	return Parse(NewSource(text))
}

// isRulePath reports whether a block-opening path declares an ltm rule,
// whose body must be captured verbatim.
func isRulePath(path []string) bool {
	return len(path) >= 3 && path[0] == "ltm" && path[1] == "rule"
}

// splitKeyValue splits a key/value line on the first whitespace run.
func splitKeyValue(line string) (key, rest string, hasVal bool) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, "", false
	}
	return line[:i], strings.TrimSpace(line[i:]), true
}

// captureQuoted reassembles a quoted value that may span multiple raw
// lines. The quote-balance scan is re-run on every appended line; \" does
// not toggle the balance.
func captureQuoted(src *Source, first string) (string, bool) {
	text := first
	open := scanQuotes(first, false)
	for open {
		line, ok := src.Next()
		if !ok {
			return "", false
		}
		text += "\n" + line
		open = scanQuotes(line, open)
	}
	return strings.TrimSpace(text), true
}

func scanQuotes(s string, open bool) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '"' && (i == 0 || s[i-1] != '\\') {
			open = !open
		}
	}
	return open
}

// captureRule consumes a rule body by brace counting, seeded at 1 for the
// already-consumed opening brace. The terminating line is excluded from
// the captured text.
func captureRule(src *Source) (string, error) {
	depth := 1
	var b strings.Builder
	for {
		line, ok := src.Next()
		if !ok {
			return "", &SyntaxError{Line: src.Line(), Err: ErrUnterminatedRule}
		}
		for i := 0; i < len(line); i++ {
			switch line[i] {
			case '{':
				depth++
			case '}':
				depth--
			}
		}
		if depth <= 0 {
			return strings.TrimSpace(b.String()), nil
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
