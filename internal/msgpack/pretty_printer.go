package msgpack

import (
	"fmt"
	"strings"
)

// Snapshot captures the reader's current position so a failed or exploratory
// decode can be undone with Restore, mirroring the snapshot/restore pattern
// the original implementation used around its pretty-printer.
func (r *Reader) Snapshot() int { return r.pos }

// Restore rewinds the reader to a position previously returned by Snapshot.
func (r *Reader) Restore(pos int) { r.pos = pos }

// PrettyPrint renders the first MessagePack value in buf as an indented,
// human-readable tree and returns the result as a string. It decodes with its
// own Reader, so no caller's reader position is affected; bytes after the
// first value are not rendered.
func PrettyPrint(buf []byte) string {
	r := NewReader(buf)
	var sb strings.Builder
	writeIndented(&sb, r, 0)
	return sb.String()
}

func writeIndented(sb *strings.Builder, r *Reader, depth int) {
	snap := r.Snapshot()
	v, err := r.ReadValue()
	if err != nil {
		r.Restore(snap)
		fmt.Fprintf(sb, "%s<error: %v>\n", indent(depth), err)
		return
	}
	printValue(sb, v, depth)
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func printValue(sb *strings.Builder, v Value, depth int) {
	pad := indent(depth)
	switch v.Kind {
	case KindNil:
		fmt.Fprintf(sb, "%snil\n", pad)
	case KindBool:
		fmt.Fprintf(sb, "%s%v\n", pad, v.Bool)
	case KindInt:
		fmt.Fprintf(sb, "%s%d\n", pad, v.Int)
	case KindFloat:
		fmt.Fprintf(sb, "%s%g\n", pad, v.Float)
	case KindString:
		fmt.Fprintf(sb, "%s%q\n", pad, v.Str)
	case KindBinary:
		fmt.Fprintf(sb, "%sbin(%d bytes)\n", pad, len(v.Bin))
	case KindExt:
		fmt.Fprintf(sb, "%sext(tag=%d, %d bytes)\n", pad, v.ExtTag, len(v.Bin))
	case KindArray:
		fmt.Fprintf(sb, "%s[%d]\n", pad, len(v.Array))
		for _, e := range v.Array {
			printValue(sb, e, depth+1)
		}
	case KindMap:
		fmt.Fprintf(sb, "%s{%d}\n", pad, len(v.Map))
		for _, kv := range v.Map {
			fmt.Fprintf(sb, "%s- key:\n", indent(depth+1))
			printValue(sb, kv.Key, depth+2)
			fmt.Fprintf(sb, "%s  value:\n", indent(depth+1))
			printValue(sb, kv.Value, depth+2)
		}
	}
}
