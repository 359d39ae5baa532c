package objc

// Class is an opaque, stable handle identifying a class (or metaclass) in the
// host object model. Nil is never a valid class.
type Class uint64

// Nil is the absent class.
const Nil Class = 0

// Ivar is an opaque instance variable handle.
type Ivar uint64

// Method is an opaque method handle.
type Method uint64

// Property is an opaque property handle.
type Property uint64

// SEL is a message selector identity.
type SEL uint64

// IMP is a method implementation entry point address.
type IMP uint64

// Runtime is the reflection surface metadata is read from.
//
// Implementations must be safe for concurrent use. Every accessor is total:
// unknown handles yield zero values (Nil, "" or an empty slice) rather than
// errors.
type Runtime interface {
	// LookupClass resolves a class by name, returning Nil when unknown.
	LookupClass(name string) Class

	ClassName(cls Class) string
	// ClassSuperclass returns Nil for a root class.
	ClassSuperclass(cls Class) Class
	// ClassMetaclass returns the metaclass of cls (the class of the class object).
	ClassMetaclass(cls Class) Class
	ClassIsMetaclass(cls Class) bool

	// ClassIvars, ClassMethods and ClassProperties return the members
	// declared directly on cls, in declaration order.
	ClassIvars(cls Class) []Ivar
	ClassMethods(cls Class) []Method
	ClassProperties(cls Class) []Property

	IvarName(ivar Ivar) string
	IvarOffset(ivar Ivar) int64
	IvarTypeEncoding(ivar Ivar) string

	MethodSelector(m Method) SEL
	MethodImplementation(m Method) IMP
	MethodTypeEncoding(m Method) string
	SelectorName(sel SEL) string

	PropertyName(p Property) string
	// PropertyAttributes returns the composite attribute string,
	// e.g. `T@"NSString",C,N,V_name`.
	PropertyAttributes(p Property) string
}
