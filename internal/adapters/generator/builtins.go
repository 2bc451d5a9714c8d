package generator

import (
	"context"

	"github.com/risor-io/risor/object"
)

// builtins are the host functions available to every generator script.
//
//	term(con, val?, kids?) -> term map
//	fail(message)          -> raises an error
func builtins() map[string]any {
	return map[string]any{
		"term": object.NewBuiltin("term", makeTerm),
		"fail": object.NewBuiltin("fail", fail),
	}
}

func makeTerm(_ context.Context, args ...object.Object) object.Object {
	if len(args) < 1 || len(args) > 3 {
		return object.NewArgsRangeError("term", 1, 3, len(args))
	}
	con, ok := args[0].(*object.String)
	if !ok {
		return object.Errorf("term: constructor must be a string, got %s", args[0].Type())
	}

	m := map[string]object.Object{
		keyCon:  con,
		keyVal:  object.NewString(""),
		keyKids: object.NewList([]object.Object{}),
	}
	if len(args) > 1 {
		switch v := args[1].(type) {
		case *object.String:
			m[keyVal] = v
		case *object.NilType:
		default:
			m[keyVal] = object.NewString(v.Inspect())
		}
	}
	if len(args) > 2 {
		kids, ok := args[2].(*object.List)
		if !ok {
			return object.Errorf("term: children must be a list, got %s", args[2].Type())
		}
		m[keyKids] = kids
	}
	return object.NewMap(m)
}

func fail(_ context.Context, args ...object.Object) object.Object {
	if len(args) != 1 {
		return object.NewArgsError("fail", 1, len(args))
	}
	msg, ok := args[0].(*object.String)
	if !ok {
		return object.Errorf("%s", args[0].Inspect())
	}
	return object.Errorf("%s", msg.Value())
}
