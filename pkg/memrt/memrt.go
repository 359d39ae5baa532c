// Package memrt is an in-memory, mutable object model implementing objc.Runtime.
//
// Every class defined here is paired with a metaclass, mirroring the
// Objective-C runtime: the metaclass of a subclass inherits from the
// metaclass of its superclass, and the root metaclass inherits from the root
// class itself.
package memrt

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/appsworld/go-classinfo/types/objc"
)

var (
	// ErrEmptyName is returned when a class or member is given no name.
	ErrEmptyName = errors.New("memrt: empty name")
	// ErrClassExists is returned when a class name is defined twice.
	ErrClassExists = errors.New("memrt: class already defined")
	// ErrUnknownClass is returned for a handle that is not a class of this runtime.
	ErrUnknownClass = errors.New("memrt: unknown class")
	// ErrMemberExists is returned when adding an ivar, method or property a
	// class already declares.
	ErrMemberExists = errors.New("memrt: member already declared")
)

// Runtime is a thread-safe in-memory object model.
type Runtime struct {
	mu sync.RWMutex

	classes map[objc.Class]*class
	byName  map[string]objc.Class
	ivars   []ivar     // handle i is ivars[i-1]
	methods []method   // handle i is methods[i-1]
	props   []property // handle i is props[i-1]
	sels    map[string]objc.SEL
	selName []string // SEL i is selName[i-1]

	next objc.Class
}

type class struct {
	name    string
	super   objc.Class
	meta    objc.Class
	isMeta  bool
	ivars   []objc.Ivar
	methods []objc.Method
	props   []objc.Property
}

type ivar struct {
	name   string
	types  string
	offset int64
}

type method struct {
	sel   objc.SEL
	imp   objc.IMP
	types string
}

type property struct {
	name  string
	attrs string
}

var _ objc.Runtime = (*Runtime)(nil)

// New returns an empty runtime.
func New() *Runtime {
	return &Runtime{
		classes: make(map[objc.Class]*class),
		byName:  make(map[string]objc.Class),
		sels:    make(map[string]objc.SEL),
	}
}

// DefineClass defines a class named name inheriting from super, or a root
// class when super is Nil, and returns its handle. The metaclass is created
// alongside it.
func (r *Runtime) DefineClass(name string, super objc.Class) (objc.Class, error) {
	if name == "" {
		return objc.Nil, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; ok {
		return objc.Nil, fmt.Errorf("%w: %s", ErrClassExists, name)
	}

	var superMeta objc.Class
	if super != objc.Nil {
		sc, ok := r.classes[super]
		if !ok || sc.isMeta {
			return objc.Nil, fmt.Errorf("%w: superclass %#x of %s", ErrUnknownClass, uint64(super), name)
		}
		superMeta = sc.meta
	}

	r.next++
	cls := r.next
	r.next++
	meta := r.next

	if super == objc.Nil {
		// root metaclass: inherits from the root class, is its own isa
		r.classes[meta] = &class{name: name, super: cls, meta: meta, isMeta: true}
	} else {
		r.classes[meta] = &class{name: name, super: superMeta, meta: r.rootMeta(superMeta), isMeta: true}
	}
	r.classes[cls] = &class{name: name, super: super, meta: meta}
	r.byName[name] = cls
	return cls, nil
}

// rootMeta follows metaclass superclass links to the root metaclass.
func (r *Runtime) rootMeta(meta objc.Class) objc.Class {
	for {
		c := r.classes[meta]
		if c == nil || !c.isMeta {
			return objc.Nil
		}
		if sc := r.classes[c.super]; sc == nil || !sc.isMeta {
			return meta
		}
		meta = c.super
	}
}

// AddIvar declares an instance variable on cls.
func (r *Runtime) AddIvar(cls objc.Class, name, types string, offset int64) (objc.Ivar, error) {
	if name == "" {
		return 0, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.class(cls)
	if err != nil {
		return 0, err
	}
	for _, iv := range c.ivars {
		if r.ivars[iv-1].name == name {
			return 0, fmt.Errorf("%w: ivar %s on %s", ErrMemberExists, name, c.name)
		}
	}
	r.ivars = append(r.ivars, ivar{name: name, types: types, offset: offset})
	h := objc.Ivar(len(r.ivars))
	c.ivars = append(c.ivars, h)
	return h, nil
}

// AddMethod adds a method for selector sel to cls. Like class_addMethod it
// refuses to override a method cls already implements; use ReplaceMethod for
// that.
func (r *Runtime) AddMethod(cls objc.Class, sel string, imp objc.IMP, types string) (objc.Method, error) {
	if sel == "" {
		return 0, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.class(cls)
	if err != nil {
		return 0, err
	}
	if m := r.findMethod(c, sel); m != 0 {
		return 0, fmt.Errorf("%w: method %s on %s", ErrMemberExists, sel, c.name)
	}
	return r.addMethod(c, sel, imp, types), nil
}

// ReplaceMethod replaces the implementation and types of sel on cls, adding
// the method when cls does not implement it yet.
func (r *Runtime) ReplaceMethod(cls objc.Class, sel string, imp objc.IMP, types string) (objc.Method, error) {
	if sel == "" {
		return 0, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.class(cls)
	if err != nil {
		return 0, err
	}
	if m := r.findMethod(c, sel); m != 0 {
		r.methods[m-1].imp = imp
		if types != "" {
			r.methods[m-1].types = types
		}
		return m, nil
	}
	return r.addMethod(c, sel, imp, types), nil
}

func (r *Runtime) addMethod(c *class, sel string, imp objc.IMP, types string) objc.Method {
	r.methods = append(r.methods, method{sel: r.registerSelector(sel), imp: imp, types: types})
	h := objc.Method(len(r.methods))
	c.methods = append(c.methods, h)
	return h
}

func (r *Runtime) findMethod(c *class, sel string) objc.Method {
	s, ok := r.sels[sel]
	if !ok {
		return 0
	}
	for _, m := range c.methods {
		if r.methods[m-1].sel == s {
			return m
		}
	}
	return 0
}

// AddProperty declares a property with the composite attribute string attrs on cls.
func (r *Runtime) AddProperty(cls objc.Class, name, attrs string) (objc.Property, error) {
	if name == "" {
		return 0, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.class(cls)
	if err != nil {
		return 0, err
	}
	for _, p := range c.props {
		if r.props[p-1].name == name {
			return 0, fmt.Errorf("%w: property %s on %s", ErrMemberExists, name, c.name)
		}
	}
	r.props = append(r.props, property{name: name, attrs: attrs})
	h := objc.Property(len(r.props))
	c.props = append(c.props, h)
	return h, nil
}

// RegisterSelector returns the unique selector for name, registering it on
// first use.
func (r *Runtime) RegisterSelector(name string) objc.SEL {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerSelector(name)
}

func (r *Runtime) registerSelector(name string) objc.SEL {
	if s, ok := r.sels[name]; ok {
		return s
	}
	r.selName = append(r.selName, name)
	s := objc.SEL(len(r.selName))
	r.sels[name] = s
	return s
}

// Classes returns every non-meta class, ordered by name.
func (r *Runtime) Classes() []objc.Class {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]objc.Class, 0, len(names))
	for _, name := range names {
		out = append(out, r.byName[name])
	}
	return out
}

// class must be called with r.mu held.
func (r *Runtime) class(cls objc.Class) (*class, error) {
	c, ok := r.classes[cls]
	if !ok {
		return nil, fmt.Errorf("%w: %#x", ErrUnknownClass, uint64(cls))
	}
	return c, nil
}

func (r *Runtime) lookup(cls objc.Class) *class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.classes[cls]
}

func (r *Runtime) LookupClass(name string) objc.Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

func (r *Runtime) ClassName(cls objc.Class) string {
	if c := r.lookup(cls); c != nil {
		return c.name
	}
	return ""
}

func (r *Runtime) ClassSuperclass(cls objc.Class) objc.Class {
	if c := r.lookup(cls); c != nil {
		return c.super
	}
	return objc.Nil
}

func (r *Runtime) ClassMetaclass(cls objc.Class) objc.Class {
	if c := r.lookup(cls); c != nil {
		return c.meta
	}
	return objc.Nil
}

func (r *Runtime) ClassIsMetaclass(cls objc.Class) bool {
	if c := r.lookup(cls); c != nil {
		return c.isMeta
	}
	return false
}

func (r *Runtime) ClassIvars(cls objc.Class) []objc.Ivar {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c := r.classes[cls]; c != nil {
		return append([]objc.Ivar(nil), c.ivars...)
	}
	return nil
}

func (r *Runtime) ClassMethods(cls objc.Class) []objc.Method {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c := r.classes[cls]; c != nil {
		return append([]objc.Method(nil), c.methods...)
	}
	return nil
}

func (r *Runtime) ClassProperties(cls objc.Class) []objc.Property {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c := r.classes[cls]; c != nil {
		return append([]objc.Property(nil), c.props...)
	}
	return nil
}

func (r *Runtime) ivar(h objc.Ivar) (ivar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h == 0 || int(h) > len(r.ivars) {
		return ivar{}, false
	}
	return r.ivars[h-1], true
}

func (r *Runtime) IvarName(h objc.Ivar) string {
	iv, _ := r.ivar(h)
	return iv.name
}

func (r *Runtime) IvarOffset(h objc.Ivar) int64 {
	iv, _ := r.ivar(h)
	return iv.offset
}

func (r *Runtime) IvarTypeEncoding(h objc.Ivar) string {
	iv, _ := r.ivar(h)
	return iv.types
}

func (r *Runtime) method(h objc.Method) (method, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h == 0 || int(h) > len(r.methods) {
		return method{}, false
	}
	return r.methods[h-1], true
}

func (r *Runtime) MethodSelector(h objc.Method) objc.SEL {
	m, _ := r.method(h)
	return m.sel
}

func (r *Runtime) MethodImplementation(h objc.Method) objc.IMP {
	m, _ := r.method(h)
	return m.imp
}

func (r *Runtime) MethodTypeEncoding(h objc.Method) string {
	m, _ := r.method(h)
	return m.types
}

func (r *Runtime) SelectorName(sel objc.SEL) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if sel == 0 || int(sel) > len(r.selName) {
		return ""
	}
	return r.selName[sel-1]
}

func (r *Runtime) property(h objc.Property) (property, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h == 0 || int(h) > len(r.props) {
		return property{}, false
	}
	return r.props[h-1], true
}

func (r *Runtime) PropertyName(h objc.Property) string {
	p, _ := r.property(h)
	return p.name
}

func (r *Runtime) PropertyAttributes(h objc.Property) string {
	p, _ := r.property(h)
	return p.attrs
}
