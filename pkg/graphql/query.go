package graphql

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const indentUnit = "  "

// Selection is a node of a selection set: a Field or an InlineFragment.
type Selection interface {
	render(b *strings.Builder, depth int)
}

// Value is an argument value: a variable reference or a literal.
type Value interface {
	literal() string
}

type varRef string

func (v varRef) literal() string { return "$" + string(v) }

type enumValue string

func (e enumValue) literal() string { return string(e) }

type boolValue bool

func (v boolValue) literal() string { return strconv.FormatBool(bool(v)) }

// Var references the operation variable name.
func Var(name string) Value { return varRef(name) }

// Enum is an unquoted enum literal such as COMPOSER.
func Enum(name string) Value { return enumValue(name) }

// Bool is a boolean literal.
func Bool(b bool) Value { return boolValue(b) }

// Argument is a named argument of a field.
type Argument struct {
	Name  string
	Value Value
}

// Arg builds an Argument.
func Arg(name string, v Value) Argument {
	return Argument{Name: name, Value: v}
}

// Field is a named field with optional arguments and sub-selections.
type Field struct {
	name       string
	args       []Argument
	selections []Selection
}

// NewField returns a leaf field.
func NewField(name string) Field {
	return Field{name: name}
}

// Fields returns leaf fields for each name.
func Fields(names ...string) []Selection {
	out := make([]Selection, len(names))
	for i, n := range names {
		out[i] = NewField(n)
	}
	return out
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// Args returns a copy of f with args appended. An argument whose name
// already exists replaces the previous one.
func (f Field) Args(args ...Argument) Field {
	out := slices.Clone(f.args)
	for _, a := range args {
		if i := slices.IndexFunc(out, func(e Argument) bool { return e.Name == a.Name }); i >= 0 {
			out[i] = a
			continue
		}
		out = append(out, a)
	}
	f.args = out
	return f
}

// Select returns a copy of f with sel appended to its selection set.
func (f Field) Select(sel ...Selection) Field {
	f.selections = append(slices.Clone(f.selections), sel...)
	return f
}

func (f Field) render(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat(indentUnit, depth))
	b.WriteString(f.name)
	if len(f.args) > 0 {
		b.WriteByte('(')
		for i, a := range f.args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.Name)
			b.WriteString(": ")
			b.WriteString(a.Value.literal())
		}
		b.WriteByte(')')
	}
	renderSelectionSet(b, f.selections, depth)
	b.WriteByte('\n')
}

// InlineFragment selects fields conditionally on a concrete type.
type InlineFragment struct {
	typeName   string
	selections []Selection
}

// On builds an inline fragment "... on typeName { sel }".
func On(typeName string, sel ...Selection) InlineFragment {
	return InlineFragment{typeName: typeName, selections: slices.Clone(sel)}
}

func (f InlineFragment) render(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat(indentUnit, depth))
	b.WriteString("... on ")
	b.WriteString(f.typeName)
	renderSelectionSet(b, f.selections, depth)
	b.WriteByte('\n')
}

func renderSelectionSet(b *strings.Builder, sel []Selection, depth int) {
	if len(sel) == 0 {
		return
	}
	b.WriteString(" {\n")
	for _, s := range sel {
		s.render(b, depth+1)
	}
	b.WriteString(strings.Repeat(indentUnit, depth))
	b.WriteByte('}')
}

// Variable declares an operation variable.
type Variable struct {
	Name     string
	Type     string
	Required bool
}

// Required declares a non-null variable ("$name: Type!").
func Required(name, typ string) Variable {
	return Variable{Name: name, Type: typ, Required: true}
}

// Optional declares a nullable variable ("$name: Type").
func Optional(name, typ string) Variable {
	return Variable{Name: name, Type: typ}
}

func (v Variable) String() string {
	s := "$" + v.Name + ": " + v.Type
	if v.Required {
		s += "!"
	}
	return s
}

// Operation is a named query document.
type Operation struct {
	name       string
	vars       []Variable
	selections []Selection
}

// NewQuery starts a query operation with the given variable declarations.
func NewQuery(name string, vars ...Variable) Operation {
	return Operation{name: name, vars: slices.Clone(vars)}
}

// Name returns the operation name.
func (o Operation) Name() string { return o.name }

// Variables returns the declared variables.
func (o Operation) Variables() []Variable { return slices.Clone(o.vars) }

// Select returns a copy of o with sel appended to its root selections.
func (o Operation) Select(sel ...Selection) Operation {
	o.selections = append(slices.Clone(o.selections), sel...)
	return o
}

// String renders the query document.
func (o Operation) String() string {
	var b strings.Builder
	b.WriteString("query")
	if o.name != "" {
		b.WriteByte(' ')
		b.WriteString(o.name)
	}
	if len(o.vars) > 0 {
		b.WriteByte('(')
		for i, v := range o.vars {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(v.String())
		}
		b.WriteByte(')')
	}
	renderSelectionSet(&b, o.selections, 0)
	b.WriteByte('\n')
	return b.String()
}

// Bind builds the variables object for o from values. Only declared
// variables are kept; nil values are sent as null. A required variable
// that is absent or nil is an error.
func (o Operation) Bind(values map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(o.vars))
	for _, v := range o.vars {
		val, ok := values[v.Name]
		if isNil(val) {
			if v.Required {
				return nil, fmt.Errorf("graphql: %s: required variable $%s is missing", o.name, v.Name)
			}
			if ok {
				out[v.Name] = nil
			}
			continue
		}
		out[v.Name] = val
	}
	return out, nil
}

func isNil(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *string:
		return x == nil
	}
	return false
}

// Request returns the wire request for o bound to values.
func (o Operation) Request(values map[string]any) (*Request, error) {
	vars, err := o.Bind(values)
	if err != nil {
		return nil, err
	}
	return &Request{Query: o.String(), OperationName: o.name, Variables: vars}, nil
}
