package memrt

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appsworld/go-classinfo/types/objc"
)

func TestDefineClass(t *testing.T) {
	rt := New()

	root, err := rt.DefineClass("NSObject", objc.Nil)
	require.NoError(t, err)
	sub, err := rt.DefineClass("User", root)
	require.NoError(t, err)

	assert.Equal(t, root, rt.LookupClass("NSObject"))
	assert.Equal(t, sub, rt.LookupClass("User"))
	assert.Equal(t, objc.Nil, rt.LookupClass("Missing"))

	assert.Equal(t, "User", rt.ClassName(sub))
	assert.Equal(t, root, rt.ClassSuperclass(sub))
	assert.Equal(t, objc.Nil, rt.ClassSuperclass(root))
	assert.False(t, rt.ClassIsMetaclass(sub))

	meta := rt.ClassMetaclass(sub)
	rootMeta := rt.ClassMetaclass(root)
	assert.True(t, rt.ClassIsMetaclass(meta))
	assert.Equal(t, "User", rt.ClassName(meta))

	// the metaclass chain mirrors the class chain and ends in the root class
	assert.Equal(t, rootMeta, rt.ClassSuperclass(meta))
	assert.Equal(t, root, rt.ClassSuperclass(rootMeta))

	// every metaclass is an instance of the root metaclass
	assert.Equal(t, rootMeta, rt.ClassMetaclass(meta))
	assert.Equal(t, rootMeta, rt.ClassMetaclass(rootMeta))
}

func TestDefineClassErrors(t *testing.T) {
	rt := New()
	root, err := rt.DefineClass("NSObject", objc.Nil)
	require.NoError(t, err)

	_, err = rt.DefineClass("", objc.Nil)
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = rt.DefineClass("NSObject", objc.Nil)
	assert.ErrorIs(t, err, ErrClassExists)

	_, err = rt.DefineClass("User", objc.Class(0xdead))
	assert.ErrorIs(t, err, ErrUnknownClass)

	_, err = rt.DefineClass("User", rt.ClassMetaclass(root))
	assert.ErrorIs(t, err, ErrUnknownClass, "a metaclass cannot be a superclass")
}

func TestMembers(t *testing.T) {
	rt := New()
	cls, err := rt.DefineClass("User", objc.Nil)
	require.NoError(t, err)

	iv, err := rt.AddIvar(cls, "_name", `@"NSString"`, 8)
	require.NoError(t, err)
	assert.Equal(t, "_name", rt.IvarName(iv))
	assert.Equal(t, `@"NSString"`, rt.IvarTypeEncoding(iv))
	assert.Equal(t, int64(8), rt.IvarOffset(iv))
	assert.Equal(t, []objc.Ivar{iv}, rt.ClassIvars(cls))

	_, err = rt.AddIvar(cls, "_name", "i", 16)
	assert.ErrorIs(t, err, ErrMemberExists)
	_, err = rt.AddIvar(cls, "", "i", 16)
	assert.ErrorIs(t, err, ErrEmptyName)
	_, err = rt.AddIvar(objc.Class(0xdead), "_x", "i", 16)
	assert.ErrorIs(t, err, ErrUnknownClass)

	m, err := rt.AddMethod(cls, "name", 0x1000, "@16@0:8")
	require.NoError(t, err)
	assert.Equal(t, "name", rt.SelectorName(rt.MethodSelector(m)))
	assert.Equal(t, objc.IMP(0x1000), rt.MethodImplementation(m))
	assert.Equal(t, "@16@0:8", rt.MethodTypeEncoding(m))
	assert.Equal(t, rt.RegisterSelector("name"), rt.MethodSelector(m))

	_, err = rt.AddMethod(cls, "name", 0x2000, "@16@0:8")
	assert.ErrorIs(t, err, ErrMemberExists)

	p, err := rt.AddProperty(cls, "name", `T@"NSString",C,N,V_name`)
	require.NoError(t, err)
	assert.Equal(t, "name", rt.PropertyName(p))
	assert.Equal(t, `T@"NSString",C,N,V_name`, rt.PropertyAttributes(p))
	assert.Equal(t, []objc.Property{p}, rt.ClassProperties(cls))

	_, err = rt.AddProperty(cls, "name", "Ti")
	assert.ErrorIs(t, err, ErrMemberExists)
}

func TestReplaceMethod(t *testing.T) {
	rt := New()
	cls, err := rt.DefineClass("User", objc.Nil)
	require.NoError(t, err)

	m, err := rt.ReplaceMethod(cls, "name", 0x1000, "@16@0:8")
	require.NoError(t, err)

	again, err := rt.ReplaceMethod(cls, "name", 0x2000, "")
	require.NoError(t, err)
	assert.Equal(t, m, again)
	assert.Equal(t, objc.IMP(0x2000), rt.MethodImplementation(m))
	assert.Equal(t, "@16@0:8", rt.MethodTypeEncoding(m), "empty types keep the old encoding")
	assert.Len(t, rt.ClassMethods(cls), 1)
}

func TestAccessorsAreTotal(t *testing.T) {
	rt := New()
	bogus := objc.Class(42)

	assert.Empty(t, rt.ClassName(bogus))
	assert.Equal(t, objc.Nil, rt.ClassSuperclass(bogus))
	assert.Equal(t, objc.Nil, rt.ClassMetaclass(bogus))
	assert.False(t, rt.ClassIsMetaclass(bogus))
	assert.Nil(t, rt.ClassIvars(bogus))
	assert.Nil(t, rt.ClassMethods(bogus))
	assert.Nil(t, rt.ClassProperties(bogus))

	assert.Empty(t, rt.IvarName(0))
	assert.Empty(t, rt.IvarTypeEncoding(7))
	assert.Zero(t, rt.IvarOffset(7))
	assert.Zero(t, rt.MethodSelector(7))
	assert.Zero(t, rt.MethodImplementation(7))
	assert.Empty(t, rt.MethodTypeEncoding(0))
	assert.Empty(t, rt.SelectorName(7))
	assert.Empty(t, rt.PropertyName(7))
	assert.Empty(t, rt.PropertyAttributes(0))
}

func TestClassesSorted(t *testing.T) {
	rt := New()
	root, err := rt.DefineClass("NSObject", objc.Nil)
	require.NoError(t, err)
	b, err := rt.DefineClass("B", root)
	require.NoError(t, err)
	a, err := rt.DefineClass("A", root)
	require.NoError(t, err)

	assert.Equal(t, []objc.Class{a, b, root}, rt.Classes())
}

func TestClassMembersAreCopies(t *testing.T) {
	rt := New()
	cls, err := rt.DefineClass("User", objc.Nil)
	require.NoError(t, err)
	_, err = rt.AddIvar(cls, "_a", "i", 8)
	require.NoError(t, err)

	ivars := rt.ClassIvars(cls)
	ivars[0] = 0
	assert.NotZero(t, rt.ClassIvars(cls)[0])
}

func TestConcurrentMutation(t *testing.T) {
	rt := New()
	cls, err := rt.DefineClass("User", objc.Nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_, _ = rt.ReplaceMethod(cls, "tick", objc.IMP(i), "v16@0:8")
				for _, m := range rt.ClassMethods(cls) {
					_ = rt.SelectorName(rt.MethodSelector(m))
				}
			}
		}()
	}
	wg.Wait()
	assert.Len(t, rt.ClassMethods(cls), 1)
}
