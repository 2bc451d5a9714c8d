package generator

import (
	"fmt"

	"github.com/risor-io/risor/object"
	"go.trai.ch/sift/internal/core/domain"
)

// Keys of the map representation of a term inside generator scripts.
const (
	keyCon  = "con"
	keyVal  = "val"
	keyKids = "kids"
	keySpan = "span"
)

// ConList is the constructor of a term converted from a script list.
const ConList = "List"

func termToObject(t *domain.Term) object.Object {
	if t == nil {
		return object.Nil
	}
	kids := make([]object.Object, len(t.Children))
	for i, c := range t.Children {
		kids[i] = termToObject(c)
	}
	m := map[string]object.Object{
		keyCon:  object.NewString(t.Constructor),
		keyVal:  object.NewString(t.Value),
		keyKids: object.NewList(kids),
	}
	if t.Span != nil {
		m[keySpan] = object.NewMap(map[string]object.Object{
			"sl": object.NewInt(int64(t.Span.StartLine)),
			"sc": object.NewInt(int64(t.Span.StartColumn)),
			"el": object.NewInt(int64(t.Span.EndLine)),
			"ec": object.NewInt(int64(t.Span.EndColumn)),
			"sb": object.NewInt(int64(t.Span.StartByte)),
			"eb": object.NewInt(int64(t.Span.EndByte)),
		})
	}
	return object.NewMap(m)
}

// objectToTerm converts a script value back into a term. Maps must carry a
// constructor; lists become List terms; nil becomes a nil term.
func objectToTerm(obj object.Object) (*domain.Term, error) {
	switch v := obj.(type) {
	case nil, *object.NilType:
		return nil, nil
	case *object.List:
		t := &domain.Term{Constructor: ConList}
		for _, item := range v.Value() {
			c, err := objectToTerm(item)
			if err != nil {
				return nil, err
			}
			if c != nil {
				t.Children = append(t.Children, c)
			}
		}
		return t, nil
	case *object.Map:
		return mapToTerm(v.Value())
	default:
		return nil, fmt.Errorf("expected term map or list, got %s", obj.Type())
	}
}

func mapToTerm(m map[string]object.Object) (*domain.Term, error) {
	con, ok := m[keyCon].(*object.String)
	if !ok || con.Value() == "" {
		return nil, fmt.Errorf("term map without %q", keyCon)
	}
	t := &domain.Term{Constructor: con.Value()}
	if val, ok := m[keyVal].(*object.String); ok {
		t.Value = val.Value()
	}
	if kids, ok := m[keyKids].(*object.List); ok {
		for _, item := range kids.Value() {
			c, err := objectToTerm(item)
			if err != nil {
				return nil, err
			}
			if c != nil {
				t.Children = append(t.Children, c)
			}
		}
	}
	if sp, ok := m[keySpan].(*object.Map); ok {
		s := sp.Value()
		t.Span = &domain.Span{
			StartLine:   getInt(s, "sl"),
			StartColumn: getInt(s, "sc"),
			EndLine:     getInt(s, "el"),
			EndColumn:   getInt(s, "ec"),
			StartByte:   getInt(s, "sb"),
			EndByte:     getInt(s, "eb"),
		}
	}
	return t, nil
}

func getInt(m map[string]object.Object, key string) int {
	switch v := m[key].(type) {
	case *object.Int:
		return int(v.Value())
	case *object.Float:
		return int(v.Value())
	default:
		return 0
	}
}
