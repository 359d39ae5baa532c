// Package classinfo caches structural metadata about Objective-C style
// classes: their instance variables, methods and properties, and the
// classification of their type encodings.
//
// The reflection surface itself is injected as an objc.Runtime, so the same
// cache works against an in-memory object model (pkg/memrt), the classes of a
// Mach-O image (pkg/machort) or any other host.
//
//	c := classinfo.New(rt, classinfo.WithLogger(logger))
//	info := c.ClassInfoWithName("User")
//	for _, name := range info.PropertyNames() {
//		p := info.PropertyInfos[name]
//		fmt.Println(p.Name, p.Type, p.Getter, p.Setter)
//	}
//
// # Concurrency model
//
// Lookups take a read lock on the fast path. A miss builds the descriptor
// outside the lock, with at most one build per class in flight, and installs
// it under the write lock. Descriptors are immutable once installed and are
// shared freely between goroutines.
//
// # Invalidation
//
// After mutating a class at runtime (adding a method, say) call
// SetNeedUpdate. The next lookup rebuilds the descriptor; descriptors already
// returned keep describing the class as it was. Invalidation does not
// cascade to subclasses.
package classinfo
