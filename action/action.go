// Package action is the per-frame output of an agent: a bag of typed
// attributes read by the movement and animation code.
package action

import (
	"sort"
)

type ClassID uint16

const (
	CLASS_NONE ClassID = iota
	CLASS_SPEED
	CLASS_ROTATION
	CLASS_FORCED_POSITION
	CLASS_FORCED_ROTATION
	CLASS_TARGET_POINT
)

// Attribute is one entry of an Action. ClassID must not dereference the
// receiver: it is called on nil pointers to resolve the class of a type.
type Attribute interface {
	ClassID() ClassID
	Updated() bool
	setUpdated(bool)
	clone() Attribute
}

// Base carries the updated flag shared by all attributes.
type Base struct {
	updated bool
}

func (b *Base) Updated() bool      { return b.updated }
func (b *Base) setUpdated(up bool) { b.updated = up }

// Action holds at most one attribute per class.
type Action struct {
	attrs map[ClassID]Attribute
}

func New() *Action {
	return &Action{attrs: make(map[ClassID]Attribute)}
}

// Set stores attr, replacing the attribute of the same class, and marks it
// updated for this frame.
func (a *Action) Set(attr Attribute) {
	if a.attrs == nil {
		a.attrs = make(map[ClassID]Attribute)
	}
	attr.setUpdated(true)
	a.attrs[attr.ClassID()] = attr
}

func (a *Action) Get(class ClassID) Attribute {
	return a.attrs[class]
}

func (a *Action) Remove(class ClassID) bool {
	if _, ok := a.attrs[class]; !ok {
		return false
	}
	delete(a.attrs, class)
	return true
}

func (a *Action) Len() int { return len(a.attrs) }

// Classes lists the classes present, in ascending order.
func (a *Action) Classes() []ClassID {
	res := make([]ClassID, 0, len(a.attrs))
	for id := range a.attrs {
		res = append(res, id)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// ResetUpdated clears the updated flag of every attribute, at frame start.
func (a *Action) ResetUpdated() {
	for _, attr := range a.attrs {
		attr.setUpdated(false)
	}
}

// Clear drops every attribute.
func (a *Action) Clear() {
	clear(a.attrs)
}

// Synchronize merges src into a, copying only the attributes src updated this
// frame. Attributes src did not touch keep their previous value in a.
func (a *Action) Synchronize(src *Action) {
	for id, attr := range src.attrs {
		if !attr.Updated() {
			continue
		}
		if a.attrs == nil {
			a.attrs = make(map[ClassID]Attribute)
		}
		c := attr.clone()
		c.setUpdated(true)
		a.attrs[id] = c
	}
}

// GetAttribute returns the attribute of type T, T being a pointer attribute type.
func GetAttribute[T Attribute](a *Action) (T, bool) {
	var zero T
	attr, ok := a.attrs[zero.ClassID()]
	if !ok {
		return zero, false
	}
	t, ok := attr.(T)
	return t, ok
}
