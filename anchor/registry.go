package anchor

import (
	"sync"
)

// Viewport is the size of the browser window
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Registry maps anchor keys to their current rectangles. Panels write it
// whenever they lay out; the connector engine reads it. A missing key is a
// normal outcome: the element is filtered out, scrolled away or unmounted.
type Registry struct {
	mu       sync.RWMutex
	anchors  map[string]Rect
	panels   map[Zone]Rect
	visible  map[Zone]Rect
	viewport Viewport
	version  uint64
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		anchors: make(map[string]Rect),
		panels:  make(map[Zone]Rect),
		visible: make(map[Zone]Rect),
	}
}

// Set records the rectangle for key. Invalid rectangles remove the key.
func (r *Registry) Set(key string, rect Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setLocked(key, rect)
	r.version++
}

// SetMany applies a batch of rectangles and removals as one change
func (r *Registry) SetMany(rects map[string]Rect, remove []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range remove {
		delete(r.anchors, key)
	}
	for key, rect := range rects {
		r.setLocked(key, rect)
	}
	r.version++
}

func (r *Registry) setLocked(key string, rect Rect) {
	if key == "" {
		return
	}
	if !rect.Valid() {
		delete(r.anchors, key)
		return
	}
	r.anchors[key] = rect
}

// Remove forgets key
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.anchors[key]; ok {
		delete(r.anchors, key)
		r.version++
	}
}

// Clear forgets every anchor. Panel bounds, visible rectangles and the
// viewport are kept.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.anchors = make(map[string]Rect)
	r.version++
}

// Lookup returns the rectangle registered for key
func (r *Registry) Lookup(key string) (Rect, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rect, ok := r.anchors[key]
	return rect, ok
}

// Center returns the center of the rectangle registered for key
func (r *Registry) Center(key string) (Point, bool) {
	rect, ok := r.Lookup(key)
	if !ok {
		return Point{}, false
	}
	return rect.Center(), true
}

// Len returns the number of registered anchors
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.anchors)
}

// SetPanel records a panel's bounding box
func (r *Registry) SetPanel(zone Zone, rect Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rect.Valid() {
		r.panels[zone] = rect
	} else {
		delete(r.panels, zone)
	}
	r.version++
}

// Panel returns a panel's bounding box
func (r *Registry) Panel(zone Zone) (Rect, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rect, ok := r.panels[zone]
	return rect, ok
}

// SetVisible records the part of a panel currently on screen after zoom
// and pan
func (r *Registry) SetVisible(zone Zone, rect Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rect.Valid() {
		r.visible[zone] = rect
	} else {
		delete(r.visible, zone)
	}
	r.version++
}

// Visible returns a panel's visible rectangle
func (r *Registry) Visible(zone Zone) (Rect, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rect, ok := r.visible[zone]
	return rect, ok
}

// ClearVisible forgets a panel's visible rectangle
func (r *Registry) ClearVisible(zone Zone) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.visible, zone)
	r.version++
}

// SetViewport records the window size
func (r *Registry) SetViewport(v Viewport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewport = v
	r.version++
}

// Viewport returns the window size. Zero until the client reports it.
func (r *Registry) Viewport() Viewport {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.viewport
}

// Version counts changes
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}
