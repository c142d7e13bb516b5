// Package rapcfg decodes the rapified (binary) form of Real Virtuality
// class/variable/array config documents, used for materials (RVMAT)
// and other asset descriptors. The reverse direction — parsing the
// textual config grammar — is out of scope; only the textual writer
// (for rendering a decoded tree back to source form) is implemented
// here.
package rapcfg

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/armatools/rvtk/binio"
)

// ErrInvalidSignature is returned when the leading 4 bytes are not
// "\0raP".
var ErrInvalidSignature = errors.New("rapcfg: invalid signature")

// ErrUnknownEntryType is returned for an entry type byte outside
// {0 class, 1 variable, 2 array, 3 external class, 4 delete class,
// 5 array expansion}.
var ErrUnknownEntryType = errors.New("rapcfg: unknown entry type")

// ErrUnknownValueType is returned for a variable/array-element subtype
// byte outside {0 string, 1 float, 2 int, 3 nested array}.
var ErrUnknownValueType = errors.New("rapcfg: unknown value type")

// ValueKind discriminates a Value's underlying type.
type ValueKind int

const (
	KindString ValueKind = iota
	KindFloat
	KindInt
	KindArray
)

// Value is a tagged union over string/float/int/nested-array config
// values.
type Value struct {
	Kind  ValueKind
	Str   string
	Float float32
	Int   int32
	Array []Value
}

// Variable is a single `type name = value;` assignment.
type Variable struct {
	Name  string
	Value Value
}

// Array is a named `type name[] = {...};` assignment. Expansion marks
// a `+=`-style array-expansion entry (type byte 5).
type Array struct {
	Name      string
	Elements  []Value
	Expansion bool
}

// Class is one rapified class body: its parent name, nested classes,
// variables, and arrays. Each kind is kept in its own slice in
// declaration order; the interleaving across kinds is not kept.
type Class struct {
	Name      string
	Parent    string
	Classes   []*Class
	Variables []Variable
	Arrays    []Array
	// External and Deleted record forward-declared ("class Foo;") and
	// deleted ("delete Foo;") class names, which carry no body.
	External []string
	Deleted  []string
}

// Config is a decoded rapified file: its root class body (the document
// root has no name of its own).
type Config struct {
	Root *Class
}

// Read parses a rapified config from r.
func Read(r io.ReadSeeker) (*Config, error) {
	br := binio.NewReader(r)
	sig, err := br.Bytes(4)
	if err != nil {
		return nil, fmt.Errorf("rapcfg: reading signature: %w", err)
	}
	if !(sig[0] == 0 && sig[1] == 'r' && sig[2] == 'a' && sig[3] == 'P') {
		return nil, ErrInvalidSignature
	}

	if _, err := br.Seek(16, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rapcfg: seeking to root class body: %w", err)
	}

	root, err := readClassBody(br, "")
	if err != nil {
		return nil, fmt.Errorf("rapcfg: reading root class: %w", err)
	}
	return &Config{Root: root}, nil
}

func readClassBody(br *binio.Reader, name string) (*Class, error) {
	parent, err := br.ASCIIZ()
	if err != nil {
		return nil, fmt.Errorf("reading parent name: %w", err)
	}
	count, err := br.CompressedInt()
	if err != nil {
		return nil, fmt.Errorf("reading entry count: %w", err)
	}

	c := &Class{Name: name, Parent: parent}
	for i := uint32(0); i < count; i++ {
		entryType, err := br.U8()
		if err != nil {
			return nil, fmt.Errorf("reading entry %d type: %w", i, err)
		}
		switch entryType {
		case 0: // nested class
			nested, err := readNestedClass(br, false)
			if err != nil {
				return nil, err
			}
			c.Classes = append(c.Classes, nested)
		case 1: // variable
			v, err := readVariable(br)
			if err != nil {
				return nil, err
			}
			c.Variables = append(c.Variables, v)
		case 2: // array
			a, err := readArray(br, false)
			if err != nil {
				return nil, err
			}
			c.Arrays = append(c.Arrays, a)
		case 3: // external class
			childName, err := br.ASCIIZ()
			if err != nil {
				return nil, fmt.Errorf("reading external class name: %w", err)
			}
			c.External = append(c.External, childName)
		case 4: // delete class
			childName, err := br.ASCIIZ()
			if err != nil {
				return nil, fmt.Errorf("reading deleted class name: %w", err)
			}
			c.Deleted = append(c.Deleted, childName)
		case 5: // array expansion
			if _, err := br.U32(); err != nil { // skip 4 bytes
				return nil, fmt.Errorf("reading array expansion padding: %w", err)
			}
			a, err := readArray(br, true)
			if err != nil {
				return nil, err
			}
			c.Arrays = append(c.Arrays, a)
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnknownEntryType, entryType)
		}
	}
	return c, nil
}

func readNestedClass(br *binio.Reader, expansion bool) (*Class, error) {
	childName, err := br.ASCIIZ()
	if err != nil {
		return nil, fmt.Errorf("reading nested class name: %w", err)
	}
	offset, err := br.U32()
	if err != nil {
		return nil, fmt.Errorf("reading nested class body offset: %w", err)
	}

	continuation, err := br.Pos()
	if err != nil {
		return nil, fmt.Errorf("capturing continuation offset: %w", err)
	}

	if _, err := br.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to nested class %s body: %w", childName, err)
	}
	nested, err := readClassBody(br, childName)
	// Restore the original position regardless of success or failure
	// so a parse error in a nested class leaves the parent's cursor
	// where the caller expects it.
	if _, seekErr := br.Seek(continuation, io.SeekStart); seekErr != nil && err == nil {
		err = fmt.Errorf("restoring continuation offset: %w", seekErr)
	}
	if err != nil {
		return nil, err
	}
	return nested, nil
}

func readVariable(br *binio.Reader) (Variable, error) {
	subtype, err := br.U8()
	if err != nil {
		return Variable{}, fmt.Errorf("reading variable subtype: %w", err)
	}
	name, err := br.ASCIIZ()
	if err != nil {
		return Variable{}, fmt.Errorf("reading variable name: %w", err)
	}
	val, err := readValue(br, subtype)
	if err != nil {
		return Variable{}, fmt.Errorf("reading value for %s: %w", name, err)
	}
	return Variable{Name: name, Value: val}, nil
}

func readValue(br *binio.Reader, subtype uint8) (Value, error) {
	switch subtype {
	case 0:
		s, err := br.ASCIIZ()
		return Value{Kind: KindString, Str: s}, err
	case 1:
		f, err := br.F32()
		return Value{Kind: KindFloat, Float: f}, err
	case 2:
		i, err := br.I32()
		return Value{Kind: KindInt, Int: i}, err
	case 3:
		count, err := br.CompressedInt()
		if err != nil {
			return Value{}, err
		}
		elems := make([]Value, 0, count)
		for i := uint32(0); i < count; i++ {
			elemType, err := br.U8()
			if err != nil {
				return Value{}, err
			}
			ev, err := readValue(br, elemType)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, ev)
		}
		return Value{Kind: KindArray, Array: elems}, nil
	default:
		return Value{}, fmt.Errorf("%w: %d", ErrUnknownValueType, subtype)
	}
}

func readArray(br *binio.Reader, expansion bool) (Array, error) {
	name, err := br.ASCIIZ()
	if err != nil {
		return Array{}, fmt.Errorf("reading array name: %w", err)
	}
	count, err := br.CompressedInt()
	if err != nil {
		return Array{}, fmt.Errorf("reading array %s element count: %w", name, err)
	}
	elems := make([]Value, 0, count)
	for i := uint32(0); i < count; i++ {
		elemType, err := br.U8()
		if err != nil {
			return Array{}, fmt.Errorf("reading array %s element %d type: %w", name, i, err)
		}
		v, err := readValue(br, elemType)
		if err != nil {
			return Array{}, fmt.Errorf("reading array %s element %d: %w", name, i, err)
		}
		elems = append(elems, v)
	}
	return Array{Name: name, Elements: elems, Expansion: expansion}, nil
}

// WriteText renders the decoded tree as the textual config form
// (`class Name { ... }` blocks and attribute assignments), the inverse
// of the (out-of-scope) textual grammar parser.
func WriteText(w io.Writer, c *Config) error {
	var b strings.Builder
	writeClassBody(&b, c.Root, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("\t")
	}
}

func writeClassBody(b *strings.Builder, c *Class, depth int) {
	for _, name := range c.External {
		indent(b, depth)
		fmt.Fprintf(b, "class %s;\n", name)
	}
	for _, name := range c.Deleted {
		indent(b, depth)
		fmt.Fprintf(b, "delete %s;\n", name)
	}
	for _, v := range c.Variables {
		indent(b, depth)
		fmt.Fprintf(b, "%s=%s;\n", v.Name, formatValue(v.Value))
	}
	for _, a := range c.Arrays {
		indent(b, depth)
		op := "="
		if a.Expansion {
			op = "+="
		}
		fmt.Fprintf(b, "%s[] %s {%s};\n", a.Name, op, formatElements(a.Elements))
	}
	for _, nested := range c.Classes {
		indent(b, depth)
		if nested.Parent != "" {
			fmt.Fprintf(b, "class %s: %s\n", nested.Name, nested.Parent)
		} else {
			fmt.Fprintf(b, "class %s\n", nested.Name)
		}
		indent(b, depth)
		b.WriteString("{\n")
		writeClassBody(b, nested, depth+1)
		indent(b, depth)
		b.WriteString("};\n")
	}
}

func formatValue(v Value) string {
	switch v.Kind {
	case KindString:
		return strconv.Quote(v.Str)
	case KindFloat:
		return strconv.FormatFloat(float64(v.Float), 'g', -1, 32)
	case KindInt:
		return strconv.FormatInt(int64(v.Int), 10)
	case KindArray:
		return "{" + formatElements(v.Array) + "}"
	default:
		return ""
	}
}

func formatElements(elems []Value) string {
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = formatValue(e)
	}
	return strings.Join(parts, ",")
}
