package classinfo

import (
	"errors"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/appsworld/go-classinfo/types/objc"
)

// ErrNilRuntime is the panic value of New when no runtime is given.
var ErrNilRuntime = errors.New("classinfo: nil runtime")

// Cache is a process-wide store of class descriptors read from a Runtime.
//
// Descriptors are built on first access together with their superclass
// chain, and stay cached until SetNeedUpdate marks them stale. A Cache is
// safe for concurrent use.
type Cache struct {
	rt       objc.Runtime
	log      *zap.Logger
	maxDepth int

	// mu guards entries, epochs and gen; it is never held while building.
	mu      sync.RWMutex
	entries map[key]*entry
	// epochs counts SetNeedUpdate calls per key and gen counts Reset calls.
	// Both only grow, so a build that raced an invalidation is recognized as
	// older both when it installs its result and by callers that joined it.
	epochs map[key]uint64
	gen    uint64

	// group runs at most one build per key at a time.
	group singleflight.Group
}

// key separates classes from metaclasses, whose identities the runtime does
// not promise to keep disjoint.
type key struct {
	cls  objc.Class
	meta bool
}

func (k key) String() string {
	s := strconv.FormatUint(uint64(k.cls), 16)
	if k.meta {
		return s + "+"
	}
	return s + "-"
}

// entry is replaced, never mutated, once published in entries.
type entry struct {
	info  *objc.ClassInfo
	stale bool
}

// New creates an empty cache over rt.
func New(rt objc.Runtime, opts ...Option) *Cache {
	if rt == nil {
		panic(ErrNilRuntime)
	}
	c := &Cache{
		rt:       rt,
		log:      zap.NewNop(),
		maxDepth: DefaultMaxDepth,
		entries:  make(map[key]*entry),
		epochs:   make(map[key]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Runtime returns the runtime c reads from.
func (c *Cache) Runtime() objc.Runtime {
	return c.rt
}

// ClassInfo returns the descriptor of cls, building and caching it and its
// superclass chain on first access. It returns nil when cls is Nil or the
// runtime cannot resolve it.
func (c *Cache) ClassInfo(cls objc.Class) *objc.ClassInfo {
	if cls == objc.Nil {
		return nil
	}
	return c.lookup(c.keyOf(cls))
}

// ClassInfoWithName resolves name through the runtime and returns its
// descriptor, or nil when no such class exists.
func (c *Cache) ClassInfoWithName(name string) *objc.ClassInfo {
	if name == "" {
		return nil
	}
	cls := c.rt.LookupClass(name)
	if cls == objc.Nil {
		c.log.Debug("class not found", zap.String("name", name))
		return nil
	}
	return c.ClassInfo(cls)
}

// MetaClassInfo returns the descriptor of the metaclass of cls. A metaclass
// argument is looked up as is.
func (c *Cache) MetaClassInfo(cls objc.Class) *objc.ClassInfo {
	if cls == objc.Nil {
		return nil
	}
	if !c.rt.ClassIsMetaclass(cls) {
		cls = c.rt.ClassMetaclass(cls)
	}
	return c.ClassInfo(cls)
}

// SetNeedUpdate marks the cached descriptor of cls stale so the next lookup
// rebuilds it from the runtime. Descriptors already handed out are left as
// they are, and subclasses are not invalidated: callers that changed a whole
// hierarchy must invalidate each affected class.
func (c *Cache) SetNeedUpdate(cls objc.Class) {
	if cls == objc.Nil {
		return
	}
	k := c.keyOf(cls)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.epochs[k]++
	if e, ok := c.entries[k]; ok && !e.stale {
		c.entries[k] = &entry{info: e.info, stale: true}
		c.log.Debug("class info invalidated",
			zap.String("class", e.info.Name),
			zap.Bool("meta", k.meta),
		)
	}
}

// Contains reports whether an up to date descriptor of cls is cached.
func (c *Cache) Contains(cls objc.Class) bool {
	info, fresh := c.cached(c.keyOf(cls))
	return info != nil && fresh
}

// Len returns the number of cached descriptors, stale ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Reset drops every cached descriptor.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.entries = make(map[key]*entry)
	c.log.Debug("class info cache reset")
}

func (c *Cache) keyOf(cls objc.Class) key {
	return key{cls: cls, meta: c.rt.ClassIsMetaclass(cls)}
}

func (c *Cache) cached(k key) (*objc.ClassInfo, bool) {
	info, fresh, _ := c.observe(k)
	return info, fresh
}

// observe returns the entry for k together with the invalidation stamp
// current at the time of the read.
func (c *Cache) observe(k key) (*objc.ClassInfo, bool, stamp) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := stamp{gen: c.gen, epoch: c.epochs[k]}
	if e, ok := c.entries[k]; ok {
		return e.info, !e.stale, st
	}
	return nil, false, st
}

// stamp identifies the cache state a build read the runtime under.
type stamp struct {
	gen   uint64
	epoch uint64
}

// before reports whether s predates an invalidation recorded in o.
func (s stamp) before(o stamp) bool {
	return s.gen < o.gen || s.epoch < o.epoch
}

// built is the result of one singleflight build.
type built struct {
	info *objc.ClassInfo
	at   stamp
}

// lookup returns a descriptor built no earlier than the last invalidation
// the caller could observe. A caller that joins a build started before that
// invalidation waits for it and then builds again.
func (c *Cache) lookup(k key) *objc.ClassInfo {
	for {
		info, fresh, seen := c.observe(k)
		if fresh {
			return info
		}
		v, _, _ := c.group.Do(k.String(), func() (any, error) {
			return c.build(k), nil
		})
		b := v.(built)
		if b.info == nil || !b.at.before(seen) {
			return b.info
		}
	}
}

// build creates and installs the descriptor for k. It runs inside the
// singleflight call for k and recurses into lookup for the superclass.
func (c *Cache) build(k key) built {
	c.mu.RLock()
	at := stamp{gen: c.gen, epoch: c.epochs[k]}
	if e, ok := c.entries[k]; ok && !e.stale {
		c.mu.RUnlock()
		return built{info: e.info, at: at}
	}
	c.mu.RUnlock()

	var super *objc.ClassInfo
	if sup := c.rt.ClassSuperclass(k.cls); sup != objc.Nil {
		if c.chainTerminates(k.cls) {
			super = c.lookup(c.keyOf(sup))
		} else {
			c.log.Warn("superclass chain does not terminate, link dropped",
				zap.Uint64("cls", uint64(k.cls)),
				zap.Int("max_depth", c.maxDepth),
			)
		}
	}

	info := objc.NewClassInfo(c.rt, k.cls, super)
	if info == nil {
		c.log.Debug("class not resolvable", zap.Uint64("cls", uint64(k.cls)))
		return built{at: at}
	}

	c.mu.Lock()
	stale := at.before(stamp{gen: c.gen, epoch: c.epochs[k]})
	c.entries[k] = &entry{info: info, stale: stale}
	c.mu.Unlock()

	c.log.Debug("class info built",
		zap.String("class", info.Name),
		zap.Bool("meta", info.IsMeta),
		zap.Int("ivars", len(info.IvarInfos)),
		zap.Int("methods", len(info.MethodInfos)),
		zap.Int("properties", len(info.PropertyInfos)),
		zap.Bool("stale", stale),
	)
	return built{info: info, at: at}
}

// chainTerminates walks the runtime's superclass links from cls and reports
// whether a root is reached within maxDepth steps without revisiting a class.
// Recursing only into terminating chains keeps concurrent builds of a cyclic
// hierarchy from waiting on each other.
func (c *Cache) chainTerminates(cls objc.Class) bool {
	seen := make(map[objc.Class]struct{}, 8)
	for depth := 0; cls != objc.Nil; depth++ {
		if depth > c.maxDepth {
			return false
		}
		if _, ok := seen[cls]; ok {
			return false
		}
		seen[cls] = struct{}{}
		cls = c.rt.ClassSuperclass(cls)
	}
	return true
}
