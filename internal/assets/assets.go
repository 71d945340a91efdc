// Package assets resolves static mesh and material references by path.
package assets

import (
	"fmt"
	"sync"

	"github.com/Faultbox/pcgextras/pkg/math"
)

// Built-in asset paths.
const (
	CubePath               = "/Engine/BasicShapes/Cube"
	BasicShapeMaterialPath = "/Engine/BasicShapes/BasicShapeMaterial"
)

// Mesh is a static mesh reference with the data the segment builder needs.
type Mesh struct {
	Path string
	// Extent is the half-size of the mesh bounding box. Extent.X is the
	// forward length used to space segments along a spline.
	Extent math.Vec3
	// MaterialSlots is the number of material slots; slots left unset keep
	// DefaultMaterials.
	MaterialSlots    int
	DefaultMaterials []*Material
}

// Bounds returns the local bounding box, centered on the origin.
func (m *Mesh) Bounds() math.Box {
	return math.BoxFromCenterExtent(math.Vec3{}, m.Extent)
}

// Material is a material reference.
type Material struct {
	Path string
}

// Library holds the meshes and materials known to the process.
type Library struct {
	meshes    map[string]*Mesh
	materials map[string]*Material
	cache     *Cache[*Mesh]
	mu        sync.RWMutex
}

// NewLibrary creates a library preloaded with the basic cube and its material.
func NewLibrary() *Library {
	l := &Library{
		meshes:    make(map[string]*Mesh),
		materials: make(map[string]*Material),
		cache:     NewCache[*Mesh](),
	}
	basic := &Material{Path: BasicShapeMaterialPath}
	l.RegisterMaterial(basic)
	l.RegisterMesh(&Mesh{
		Path:             CubePath,
		Extent:           math.Vec3{X: 50, Y: 50, Z: 50},
		MaterialSlots:    1,
		DefaultMaterials: []*Material{basic},
	})
	return l
}

// RegisterMesh adds or replaces a mesh.
func (l *Library) RegisterMesh(m *Mesh) {
	l.mu.Lock()
	l.meshes[m.Path] = m
	l.mu.Unlock()
	l.cache.Delete(m.Path)
}

// RegisterMaterial adds or replaces a material.
func (l *Library) RegisterMaterial(m *Material) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.materials[m.Path] = m
}

// LoadMesh resolves a mesh by path.
func (l *Library) LoadMesh(path string) (*Mesh, error) {
	if m, ok := l.cache.Get(path); ok {
		return m, nil
	}

	l.mu.RLock()
	m, ok := l.meshes[path]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("mesh not found: %s", path)
	}

	l.cache.Set(path, m)
	return m, nil
}

// LoadMaterial resolves a material by path.
func (l *Library) LoadMaterial(path string) (*Material, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	m, ok := l.materials[path]
	if !ok {
		return nil, fmt.Errorf("material not found: %s", path)
	}
	return m, nil
}

// Stats returns mesh cache statistics.
func (l *Library) Stats() (hits, misses int) {
	return l.cache.Stats()
}

// Cache is a small keyed cache with hit/miss counters.
type Cache[T any] struct {
	data map[string]T
	mu   sync.Mutex

	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{
		data: make(map[string]T),
	}
}

// Get retrieves an item from cache.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Set stores an item in cache.
func (c *Cache[T]) Set(key string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = v
}

// Delete drops an item.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Clear clears the cache.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]T)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache[T]) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
