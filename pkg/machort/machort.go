// Package machort loads the Objective-C classes of a Mach-O image into an
// in-memory runtime, so their metadata can be cached and inspected without
// running the code.
package machort

import (
	"errors"
	"fmt"

	"github.com/blacktop/go-macho"
	mobjc "github.com/blacktop/go-macho/types/objc"

	"github.com/appsworld/go-classinfo/pkg/memrt"
	"github.com/appsworld/go-classinfo/types/objc"
)

var (
	// ErrNoObjC is returned for images without Objective-C metadata.
	ErrNoObjC = errors.New("machort: image has no objc metadata")
	// ErrCycle is returned when superclass pointers form a loop.
	ErrCycle = errors.New("machort: superclass cycle")
)

// rootSuperName is what go-macho reports as the superclass of a root class.
const rootSuperName = "<ROOT>"

// ClassRecord is the static description of one class as found in an image.
type ClassRecord struct {
	Name            string
	Addr            uint64 // class_t address, 0 if unknown
	SuperName       string // may name a class defined in another image
	SuperAddr       uint64
	Ivars           []IvarRecord
	InstanceMethods []MethodRecord
	ClassMethods    []MethodRecord
	Properties      []PropertyRecord
}

type IvarRecord struct {
	Name   string
	Type   string
	Offset int64
}

type MethodRecord struct {
	Name  string
	Types string
	Imp   uint64
}

type PropertyRecord struct {
	Name       string
	Attributes string
}

// Open parses the Mach-O at path and returns a runtime holding its classes.
// Superclasses that live in other images are defined as empty root classes.
func Open(path string) (*memrt.Runtime, error) {
	f, err := macho.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if !f.HasObjC() {
		return nil, fmt.Errorf("%s: %w", path, ErrNoObjC)
	}

	classes, err := f.GetObjCClasses()
	if err != nil {
		return nil, fmt.Errorf("failed to read objc classes: %w", err)
	}

	return FromRecords(RecordsFromClasses(classes))
}

// RecordsFromClasses converts the classes go-macho parsed from an image into
// class records.
func RecordsFromClasses(classes []mobjc.Class) []ClassRecord {
	records := make([]ClassRecord, 0, len(classes))
	for _, c := range classes {
		rec := ClassRecord{
			Name:      c.Name,
			Addr:      c.ClassPtr,
			SuperName: c.SuperClass,
			SuperAddr: c.SuperclassVMAddr,
		}
		for _, iv := range c.Ivars {
			rec.Ivars = append(rec.Ivars, IvarRecord{Name: iv.Name, Type: iv.Type, Offset: int64(iv.Offset)})
		}
		rec.InstanceMethods = methodRecords(c.InstanceMethods)
		rec.ClassMethods = methodRecords(c.ClassMethods)
		for _, p := range c.Props {
			rec.Properties = append(rec.Properties, PropertyRecord{Name: p.Name, Attributes: p.EncodedAttributes})
		}
		records = append(records, rec)
	}
	return records
}

func methodRecords(methods []mobjc.Method) []MethodRecord {
	var out []MethodRecord
	for _, m := range methods {
		out = append(out, MethodRecord{Name: m.Name, Types: m.Types, Imp: m.ImpVMAddr})
	}
	return out
}

// FromRecords defines every record in a new runtime, superclasses first.
// Class methods are attached to the metaclass. A class name seen twice keeps
// its first definition; a repeated member replaces the earlier one.
func FromRecords(records []ClassRecord) (*memrt.Runtime, error) {
	l := &loader{
		rt:      memrt.New(),
		byAddr:  make(map[uint64]*ClassRecord, len(records)),
		defined: make(map[*ClassRecord]objc.Class, len(records)),
		loading: make(map[*ClassRecord]bool),
		stubs:   make(map[objc.Class]bool),
	}
	for i := range records {
		if records[i].Addr != 0 {
			l.byAddr[records[i].Addr] = &records[i]
		}
	}
	for i := range records {
		if _, err := l.define(&records[i]); err != nil {
			return nil, err
		}
	}
	return l.rt, nil
}

type loader struct {
	rt      *memrt.Runtime
	byAddr  map[uint64]*ClassRecord
	defined map[*ClassRecord]objc.Class
	loading map[*ClassRecord]bool
	stubs   map[objc.Class]bool // external superclasses defined by name only
}

func (l *loader) define(rec *ClassRecord) (objc.Class, error) {
	if rec.Name == "" {
		return objc.Nil, nil
	}
	if cls, ok := l.defined[rec]; ok {
		return cls, nil
	}
	if l.loading[rec] {
		return objc.Nil, fmt.Errorf("%w: %s", ErrCycle, rec.Name)
	}
	l.loading[rec] = true
	defer delete(l.loading, rec)

	super, err := l.superclass(rec)
	if err != nil {
		return objc.Nil, err
	}

	cls := l.rt.LookupClass(rec.Name)
	if cls == objc.Nil {
		cls, err = l.rt.DefineClass(rec.Name, super)
		if err != nil {
			return objc.Nil, fmt.Errorf("failed to define %s: %w", rec.Name, err)
		}
		if err := l.addMembers(cls, rec); err != nil {
			return objc.Nil, err
		}
	} else if l.stubs[cls] {
		delete(l.stubs, cls)
		if err := l.addMembers(cls, rec); err != nil {
			return objc.Nil, err
		}
	}
	l.defined[rec] = cls
	return cls, nil
}

func (l *loader) superclass(rec *ClassRecord) (objc.Class, error) {
	if rec.SuperAddr != 0 {
		if sup, ok := l.byAddr[rec.SuperAddr]; ok && sup != rec {
			return l.define(sup)
		}
	}
	if rec.SuperName == "" || rec.SuperName == rootSuperName || rec.SuperName == rec.Name {
		return objc.Nil, nil
	}
	if cls := l.rt.LookupClass(rec.SuperName); cls != objc.Nil {
		return cls, nil
	}
	// defined in another image
	cls, err := l.rt.DefineClass(rec.SuperName, objc.Nil)
	if err != nil {
		return objc.Nil, fmt.Errorf("failed to define external superclass %s: %w", rec.SuperName, err)
	}
	l.stubs[cls] = true
	return cls, nil
}

func (l *loader) addMembers(cls objc.Class, rec *ClassRecord) error {
	for _, iv := range rec.Ivars {
		if _, err := l.rt.AddIvar(cls, iv.Name, iv.Type, iv.Offset); !skippable(err) {
			return fmt.Errorf("failed to add ivar %s to %s: %w", iv.Name, rec.Name, err)
		}
	}
	for _, m := range rec.InstanceMethods {
		if _, err := l.rt.ReplaceMethod(cls, m.Name, objc.IMP(m.Imp), m.Types); !skippable(err) {
			return fmt.Errorf("failed to add method -%s to %s: %w", m.Name, rec.Name, err)
		}
	}
	meta := l.rt.ClassMetaclass(cls)
	for _, m := range rec.ClassMethods {
		if _, err := l.rt.ReplaceMethod(meta, m.Name, objc.IMP(m.Imp), m.Types); !skippable(err) {
			return fmt.Errorf("failed to add method +%s to %s: %w", m.Name, rec.Name, err)
		}
	}
	for _, p := range rec.Properties {
		if _, err := l.rt.AddProperty(cls, p.Name, p.Attributes); !skippable(err) {
			return fmt.Errorf("failed to add property %s to %s: %w", p.Name, rec.Name, err)
		}
	}
	return nil
}

// skippable reports whether err is nil or only concerns one malformed member
// (unnamed, or declared twice) that the loader drops.
func skippable(err error) bool {
	return err == nil || errors.Is(err, memrt.ErrMemberExists) || errors.Is(err, memrt.ErrEmptyName)
}
