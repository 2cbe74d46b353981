package vm

import "github.com/pusl-lang/pusl/value"

// listGet implements ListAccess: target[index]. Grounded on
// original_source/pusl_lang's list.rs, adapted from that source's native
// `@index_get` field indirection to a first-class VM opcode, per spec.md
// §5's opcode set already giving ListAccess dedicated status.
func listGet(target, index value.Value) (value.Value, error) {
	obj, err := asList(target)
	if err != nil {
		return value.Value{}, err
	}
	i, err := asListIndex(index, len(obj.Elements))
	if err != nil {
		return value.Value{}, err
	}
	return obj.Elements[i], nil
}

// listSet implements AssignList(is_let). is_let is accepted for opcode
// symmetry with AssignField/AssignReference, but an index assignment has
// no "create vs. mutate" distinction the way a field does — every index
// must already be within range, let or not.
func listSet(target, index, val value.Value, _ bool) error {
	obj, err := asList(target)
	if err != nil {
		return err
	}
	i, err := asListIndex(index, len(obj.Elements))
	if err != nil {
		return err
	}
	obj.Elements[i] = val
	return nil
}

func asList(v value.Value) (*value.ObjectData, error) {
	if v.Tag != value.TagObject {
		return nil, newRuntimeErr(WrongType, "cannot index a %s value", v.Tag)
	}
	obj := v.AsObject()
	if !obj.IsList {
		return nil, newRuntimeErr(WrongType, "cannot index a non-list object")
	}
	return obj, nil
}

func asListIndex(v value.Value, length int) (int, error) {
	if v.Tag != value.TagInteger {
		return 0, newRuntimeErr(WrongType, "list index must be an integer, got %s", v.Tag)
	}
	i := int(v.Int)
	if i < 0 || i >= length {
		return 0, newRuntimeErr(IndexOutOfRange, "list index %d out of range (length %d)", i, length)
	}
	return i, nil
}
