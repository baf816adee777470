// Package succ implements a parser for the line-oriented, indentation-based
// SUCC configuration text format, plus typed accessors for reading it. SUCC
// files back the ExtraData manager's on-disk entries and world-type
// metadata. Grounded in
// original_source/src/util/succ/{succ_parser,succ_types}.rs.
package succ

import (
	"fmt"
	"strings"
)

// Kind identifies the concrete shape of a Value.
type Kind int

const (
	// KindAny marks an entry that declared neither children nor a value
	// (a bare "key:" line) — it could still become a Map or List if
	// nothing ever populates it, so both IsMap and IsList report true
	// for it, matching the original's permissive "could be anything"
	// semantics.
	KindAny Kind = iota
	KindValue
	KindMap
	KindList
)

// Value is one parsed SUCC entry, recursively holding its children.
type Value struct {
	Kind Kind
	Str  string
	Map  map[string]Value
	List []Value
}

// Name returns a human-readable label for v's kind, used in error messages.
func (v Value) Name() string {
	switch v.Kind {
	case KindAny:
		return "Any"
	case KindValue:
		return "Value"
	case KindMap:
		return "Map"
	case KindList:
		return "List"
	}
	return "Unknown"
}

// IsMap reports whether v can be read as a map (true for Any and Map).
func (v Value) IsMap() bool { return v.Kind == KindAny || v.Kind == KindMap }

// IsList reports whether v can be read as a list (true for Any and List).
func (v Value) IsList() bool { return v.Kind == KindAny || v.Kind == KindList }

// Parse decodes a SUCC document into its root map of entries.
func Parse(data []byte) (Value, error) {
	text := string(data)
	lines := strings.Split(text, "\n")

	tp := &treeParser{}
	for _, raw := range lines {
		line := strings.TrimSuffix(raw, "\r")
		meta, ok, err := parseLine(line)
		if err != nil {
			return Value{}, fmt.Errorf("succ: %w", err)
		}
		if !ok {
			continue
		}

		if tp.hasNoParent() {
			if meta.indentation != 0 {
				return Value{}, fmt.Errorf("succ: first data line needs indentation 0")
			}
			if err := tp.addRoot(meta); err != nil {
				return Value{}, err
			}
			continue
		}

		last := tp.top()
		switch {
		case meta.indentation > last.meta.indentation:
			if last.determinedType != innerAny {
				return Value{}, fmt.Errorf("succ: cannot add child entry, parent already has a value set")
			}
			if meta.isList() {
				last.determinedType = innerList
			} else {
				last.determinedType = innerMap
			}
			last.expectedChildIndentation = meta.indentation
			if err := tp.addChild(last, meta); err != nil {
				return Value{}, err
			}
		case meta.indentation == last.meta.indentation:
			tp.pop()
			if tp.hasNoParent() {
				if meta.indentation != 0 {
					return Value{}, fmt.Errorf("succ: got no parent, but indentation was not 0")
				}
				if err := tp.addRoot(meta); err != nil {
					return Value{}, err
				}
			} else {
				parent := tp.top()
				if parent.determinedType != meta.dataType() {
					return Value{}, fmt.Errorf("succ: cannot mix list and map entries with the same parent")
				}
				if err := tp.addChild(parent, meta); err != nil {
					return Value{}, err
				}
			}
		default: // Less
			if err := tp.unwindTo(meta); err != nil {
				return Value{}, err
			}
		}
	}

	root := make(map[string]Value, len(tp.roots))
	for _, node := range tp.roots {
		v, err := convert(node)
		if err != nil {
			return Value{}, err
		}
		root[*node.meta.key] = v
	}
	return Value{Kind: KindMap, Map: root}, nil
}

func (tp *treeParser) unwindTo(meta lineMeta) error {
	for {
		tp.pop()
		if tp.hasNoParent() {
			if meta.indentation != 0 {
				return fmt.Errorf("succ: wrongly indented entry, expected indentation 0, got %d", meta.indentation)
			}
			return tp.addRoot(meta)
		}
		parent := tp.top()
		if meta.indentation > parent.expectedChildIndentation {
			return fmt.Errorf("succ: wrongly indented entry, expected indentation %d, got %d", parent.expectedChildIndentation, meta.indentation)
		}
		if meta.indentation == parent.expectedChildIndentation {
			if parent.determinedType != meta.dataType() {
				return fmt.Errorf("succ: cannot mix list and map entries with the same parent")
			}
			return tp.addChild(parent, meta)
		}
	}
}

func convert(n *lineContext) (Value, error) {
	switch n.determinedType {
	case innerAny:
		return Value{Kind: KindAny}, nil
	case innerValue:
		return Value{Kind: KindValue, Str: *n.meta.value}, nil
	case innerMap:
		m := make(map[string]Value, len(n.children))
		for _, c := range n.children {
			v, err := convert(c)
			if err != nil {
				return Value{}, err
			}
			m[*c.meta.key] = v
		}
		return Value{Kind: KindMap, Map: m}, nil
	case innerList:
		l := make([]Value, 0, len(n.children))
		for _, c := range n.children {
			v, err := convert(c)
			if err != nil {
				return Value{}, err
			}
			l = append(l, v)
		}
		return Value{Kind: KindList, List: l}, nil
	}
	return Value{}, fmt.Errorf("succ: internal error: unhandled node type")
}

type succTypeInner int

const (
	innerAny succTypeInner = iota
	innerValue
	innerMap
	innerList
)

type lineMeta struct {
	indentation int
	key         *string
	value       *string
}

func (m lineMeta) isList() bool { return m.key == nil }
func (m lineMeta) isParent() bool { return m.value == nil }
func (m lineMeta) dataType() succTypeInner {
	if m.isList() {
		return innerList
	}
	return innerMap
}

type lineContext struct {
	meta                     lineMeta
	children                 []*lineContext
	expectedChildIndentation int
	determinedType           succTypeInner
}

func newLineContext(meta lineMeta) *lineContext {
	t := innerValue
	if meta.isParent() {
		t = innerAny
	}
	return &lineContext{meta: meta, determinedType: t}
}

type treeParser struct {
	roots []*lineContext
	stack []*lineContext
}

func (tp *treeParser) hasNoParent() bool { return len(tp.stack) == 0 }
func (tp *treeParser) top() *lineContext { return tp.stack[len(tp.stack)-1] }
func (tp *treeParser) pop()              { tp.stack = tp.stack[:len(tp.stack)-1] }

func (tp *treeParser) addRoot(meta lineMeta) error {
	if meta.isList() {
		return fmt.Errorf("succ: root level entries need a key, they may not be list entries")
	}
	node := newLineContext(meta)
	tp.roots = append(tp.roots, node)
	tp.stack = append(tp.stack, node)
	return nil
}

func (tp *treeParser) addChild(parent *lineContext, meta lineMeta) error {
	node := newLineContext(meta)
	parent.children = append(parent.children, node)
	tp.stack = append(tp.stack, node)
	if len(tp.stack) > 200 {
		return fmt.Errorf("succ: nesting level above 200 is not allowed")
	}
	return nil
}
