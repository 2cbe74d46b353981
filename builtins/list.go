package builtins

import (
	"fmt"

	"github.com/pusl-lang/pusl/value"
)

// requireList unwraps this into its backing *value.ObjectData, rejecting
// anything that isn't a list object — including a plain Object, since
// push/pop/size/at only make sense on the managed List kind (spec.md §3
// "List").
func requireList(this value.Value) (*value.ObjectData, error) {
	if this.Tag != value.TagObject {
		return nil, fmt.Errorf("expected a list receiver, got %s", this.Tag)
	}
	obj := this.AsObject()
	if !obj.IsList {
		return nil, fmt.Errorf("expected a list receiver, got a plain object")
	}
	return obj, nil
}

// listPush implements `xs.push(v)`: appends v and returns xs, so pushes
// can be chained the way the teacher's pushback_list does.
func listPush(_ value.NativeContext, args []value.Value, this value.Value) (value.Value, error) {
	obj, err := requireList(this)
	if err != nil {
		return value.Value{}, err
	}
	if len(args) != 1 {
		return value.Value{}, fmt.Errorf("push expects 1 argument, got %d", len(args))
	}
	obj.Elements = append(obj.Elements, args[0])
	return this, nil
}

// listPop implements `xs.pop()`: removes and returns the last element.
func listPop(_ value.NativeContext, args []value.Value, this value.Value) (value.Value, error) {
	obj, err := requireList(this)
	if err != nil {
		return value.Value{}, err
	}
	if len(args) != 0 {
		return value.Value{}, fmt.Errorf("pop expects 0 arguments, got %d", len(args))
	}
	if len(obj.Elements) == 0 {
		return value.Value{}, fmt.Errorf("pop from an empty list")
	}
	last := obj.Elements[len(obj.Elements)-1]
	obj.Elements = obj.Elements[:len(obj.Elements)-1]
	return last, nil
}

// listSize implements `xs.size()`.
func listSize(_ value.NativeContext, args []value.Value, this value.Value) (value.Value, error) {
	obj, err := requireList(this)
	if err != nil {
		return value.Value{}, err
	}
	if len(args) != 0 {
		return value.Value{}, fmt.Errorf("size expects 0 arguments, got %d", len(args))
	}
	return value.Int(int64(len(obj.Elements))), nil
}

// listAt implements `xs.at(i)`, the method form of ListAccess — handy
// when a list is reached through a value that isn't itself indexable
// syntax, e.g. the result of another method call.
func listAt(_ value.NativeContext, args []value.Value, this value.Value) (value.Value, error) {
	obj, err := requireList(this)
	if err != nil {
		return value.Value{}, err
	}
	if len(args) != 1 || args[0].Tag != value.TagInteger {
		return value.Value{}, fmt.Errorf("at expects 1 integer argument")
	}
	i := int(args[0].Int)
	if i < 0 || i >= len(obj.Elements) {
		return value.Value{}, fmt.Errorf("at(%d): index out of range (length %d)", i, len(obj.Elements))
	}
	return obj.Elements[i], nil
}
