package layout

import (
	"container/list"
	"sync"
)

// Cache keeps the layouts of recently drawn lines, keyed by line number.
// Each entry remembers the text it was computed from, so an edited line
// is laid out again instead of returned stale.
type Cache struct {
	mu     sync.Mutex
	engine *Engine
	limit  int
	byLine map[int]*list.Element
	recent *list.List // front is most recently used

	hits, misses, evictions uint64
}

type cached struct {
	line   int
	text   string
	layout *Line
}

// CacheStats reports cache occupancy and effectiveness.
type CacheStats struct {
	Size      int
	MaxSize   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// NewCache creates a cache of at most limit lines. A limit of zero or less
// means unbounded.
func NewCache(engine *Engine, limit int) *Cache {
	return &Cache{
		engine: engine,
		limit:  max(limit, 0),
		byLine: make(map[int]*list.Element),
		recent: list.New(),
	}
}

// Get returns the layout of text shown on line.
func (c *Cache) Get(line int, text string) *Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byLine[line]; ok {
		e := el.Value.(*cached)
		c.recent.MoveToFront(el)
		if e.text == text {
			c.hits++
			return e.layout
		}
		c.misses++
		e.text, e.layout = text, c.engine.Layout(text)
		return e.layout
	}

	c.misses++
	e := &cached{line: line, text: text, layout: c.engine.Layout(text)}
	c.byLine[line] = c.recent.PushFront(e)
	for c.limit > 0 && c.recent.Len() > c.limit {
		oldest := c.recent.Back()
		c.recent.Remove(oldest)
		delete(c.byLine, oldest.Value.(*cached).line)
		c.evictions++
	}
	return e.layout
}

// SetEngine switches to engine, for example after the tab width changed,
// and drops every cached layout.
func (c *Cache) SetEngine(engine *Engine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine = engine
	c.resetLocked()
}

// InvalidateAll drops every cached layout.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Cache) resetLocked() {
	clear(c.byLine)
	c.recent.Init()
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recent.Len()
}

func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Size:      c.recent.Len(),
		MaxSize:   c.limit,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}
