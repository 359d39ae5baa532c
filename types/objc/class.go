package objc

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ClassInfo describes the members a class declares directly. Inherited
// members are reached through SuperClassInfo, never copied into the maps.
//
// A ClassInfo handed out by a cache is shared between goroutines and must be
// treated as read-only.
type ClassInfo struct {
	Cls      Class
	SuperCls Class
	MetaCls  Class // metaclass named like Cls; Cls itself for a metaclass
	IsMeta   bool
	Name     string

	// SuperClassInfo is the superclass descriptor current when this one was
	// built. Its lifetime belongs to the cache that produced it.
	SuperClassInfo *ClassInfo

	IvarInfos     map[string]*IvarInfo     // key: ivar name
	MethodInfos   map[string]*MethodInfo   // key: selector name
	PropertyInfos map[string]*PropertyInfo // key: property name
}

// NewClassInfo reads cls and its direct members from rt. super is linked as
// the superclass descriptor as is. It returns nil when rt cannot resolve cls.
//
// When rt reports the same member name twice the last one wins.
func NewClassInfo(rt Runtime, cls Class, super *ClassInfo) *ClassInfo {
	if cls == Nil {
		return nil
	}
	name := rt.ClassName(cls)
	if name == "" {
		return nil
	}

	info := &ClassInfo{
		Cls:            cls,
		SuperCls:       rt.ClassSuperclass(cls),
		IsMeta:         rt.ClassIsMetaclass(cls),
		Name:           name,
		SuperClassInfo: super,
	}
	if info.IsMeta {
		info.MetaCls = cls
	} else {
		info.MetaCls = rt.ClassMetaclass(cls)
	}

	ivars := rt.ClassIvars(cls)
	info.IvarInfos = make(map[string]*IvarInfo, len(ivars))
	for _, ivar := range ivars {
		iv := NewIvarInfo(rt, ivar)
		info.IvarInfos[iv.Name] = iv
	}

	methods := rt.ClassMethods(cls)
	info.MethodInfos = make(map[string]*MethodInfo, len(methods))
	for _, m := range methods {
		mi := NewMethodInfo(rt, m)
		info.MethodInfos[mi.Name] = mi
	}

	props := rt.ClassProperties(cls)
	info.PropertyInfos = make(map[string]*PropertyInfo, len(props))
	for _, p := range props {
		pi := NewPropertyInfo(rt, p)
		info.PropertyInfos[pi.Name] = pi
	}

	return info
}

// Walk calls fn for c and then each superclass descriptor, stopping at the
// root or when fn returns false.
func (c *ClassInfo) Walk(fn func(*ClassInfo) bool) {
	for info := c; info != nil; info = info.SuperClassInfo {
		if !fn(info) {
			return
		}
	}
}

// Depth returns the number of superclass links above c.
func (c *ClassInfo) Depth() int {
	n := -1
	c.Walk(func(*ClassInfo) bool {
		n++
		return true
	})
	return n
}

// LookupIvar finds an ivar on c or the nearest superclass declaring it.
func (c *ClassInfo) LookupIvar(name string) *IvarInfo {
	var found *IvarInfo
	c.Walk(func(info *ClassInfo) bool {
		found = info.IvarInfos[name]
		return found == nil
	})
	return found
}

// LookupMethod finds a method on c or the nearest superclass implementing it.
func (c *ClassInfo) LookupMethod(name string) *MethodInfo {
	var found *MethodInfo
	c.Walk(func(info *ClassInfo) bool {
		found = info.MethodInfos[name]
		return found == nil
	})
	return found
}

// LookupProperty finds a property on c or the nearest superclass declaring it.
func (c *ClassInfo) LookupProperty(name string) *PropertyInfo {
	var found *PropertyInfo
	c.Walk(func(info *ClassInfo) bool {
		found = info.PropertyInfos[name]
		return found == nil
	})
	return found
}

// IvarNames returns the names of the directly declared ivars, sorted.
func (c *ClassInfo) IvarNames() []string {
	return sortedKeys(c.IvarInfos)
}

// MethodNames returns the directly declared selector names, sorted.
func (c *ClassInfo) MethodNames() []string {
	return sortedKeys(c.MethodInfos)
}

// PropertyNames returns the directly declared property names, sorted.
func (c *ClassInfo) PropertyNames() []string {
	return sortedKeys(c.PropertyInfos)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

func (c *ClassInfo) dump(verbose bool) string {
	superName := "<ROOT>"
	if c.SuperClassInfo != nil {
		superName = c.SuperClassInfo.Name
	}

	var s bytes.Buffer
	kind := "@interface"
	if c.IsMeta {
		kind = "@interface /* meta */"
	}
	fmt.Fprintf(&s, "%s %s : %s", kind, c.Name, superName)

	if len(c.IvarInfos) > 0 {
		s.WriteString(" {\n")
		w := tabwriter.NewWriter(&s, 0, 0, 1, ' ', 0)
		for _, name := range c.IvarNames() {
			iv := c.IvarInfos[name]
			if verbose {
				fmt.Fprintf(w, "    %s %s;\t// %s\t%#x\n", iv.TypeEncoding, iv.Name, iv.Type, iv.Offset)
			} else {
				fmt.Fprintf(w, "    %s %s;\n", iv.TypeEncoding, iv.Name)
			}
		}
		w.Flush()
		s.WriteString("}")
	}
	s.WriteString("\n\n")

	if len(c.PropertyInfos) > 0 {
		for _, name := range c.PropertyNames() {
			p := c.PropertyInfos[name]
			if verbose {
				fmt.Fprintf(&s, "%s // getter=%s setter=%s ivar=%s\n", p, p.Getter, p.Setter, p.IvarName)
			} else {
				fmt.Fprintf(&s, "%s\n", p)
			}
		}
		s.WriteString("\n")
	}

	if len(c.MethodInfos) > 0 {
		sign := "-"
		if c.IsMeta {
			sign = "+"
		}
		for _, name := range c.MethodNames() {
			m := c.MethodInfos[name]
			if verbose {
				fmt.Fprintf(&s, "%s (%s)%s // %s %#x\n", sign, m.ReturnTypeEncoding, m.Name, m.TypeEncoding, m.Imp)
			} else {
				fmt.Fprintf(&s, "%s[%s %s];\n", sign, c.Name, m.Name)
			}
		}
		s.WriteString("\n")
	}

	s.WriteString("@end\n")
	return s.String()
}

func (c *ClassInfo) String() string {
	return c.dump(false)
}

// Verbose renders c with resolved types, accessors and addresses.
func (c *ClassInfo) Verbose() string {
	return c.dump(true)
}

// Chain renders the inheritance chain, e.g. "User : Model : NSObject".
func (c *ClassInfo) Chain() string {
	var names []string
	c.Walk(func(info *ClassInfo) bool {
		names = append(names, info.Name)
		return true
	})
	return strings.Join(names, " : ")
}
