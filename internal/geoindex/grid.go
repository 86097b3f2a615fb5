// Package geoindex provides a fixed-cell spatial index for radius queries.
//
// Points are bucketed into lat/lon cells of a fixed size in degrees. A radius
// query visits only the cells overlapping the query's bounding box and then
// refines candidates with the haversine distance.
package geoindex

import (
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/geocache/internal/core/domain"
)

// DefaultCellSize is the cell edge in degrees (about 1.1 km at the equator).
const DefaultCellSize = 0.01

// Cell identifies a grid bucket. X is the latitude row and Y the
// longitude column.
type Cell struct {
	X int
	Y int
}

// CellOf returns the cell containing c for the given cell size.
func CellOf(c domain.Coordinates, size float64) Cell {
	return Cell{
		X: int(math.Floor(c.Lat / size)),
		Y: int(math.Floor(normalizeLon(c.Lon) / size)),
	}
}

// CellRange is an inclusive block of cells. When the block crosses the
// antimeridian, MinY > MaxY and the range wraps.
type CellRange struct {
	MinX, MaxX int
	MinY, MaxY int
	Wraps      bool
}

// CellsAround returns the cell range covering a circle of radius meters.
func CellsAround(center domain.Coordinates, radius, size float64) CellRange {
	box := domain.BoundsAround(center, radius)
	r := CellRange{
		MinX: int(math.Floor(box.MinLat / size)),
		MaxX: int(math.Floor(box.MaxLat / size)),
	}

	if box.MaxLon-box.MinLon >= 360 {
		r.MinY = int(math.Floor(-180 / size))
		r.MaxY = int(math.Floor(180 / size))
		return r
	}

	minLon, maxLon := normalizeLon(box.MinLon), normalizeLon(box.MaxLon)
	r.MinY = int(math.Floor(minLon / size))
	r.MaxY = int(math.Floor(maxLon / size))
	r.Wraps = minLon > maxLon
	return r
}

// ContainsY reports whether column y falls inside the range.
func (r CellRange) ContainsY(y int) bool {
	if r.Wraps {
		return y >= r.MinY || y <= r.MaxY
	}
	return y >= r.MinY && y <= r.MaxY
}

// Cells enumerates every cell in the range.
func (r CellRange) Cells(size float64) []Cell {
	var cols []int
	if r.Wraps {
		last := int(math.Floor(180 / size))
		first := int(math.Floor(-180 / size))
		for y := r.MinY; y <= last; y++ {
			cols = append(cols, y)
		}
		for y := first; y <= r.MaxY; y++ {
			cols = append(cols, y)
		}
	} else {
		for y := r.MinY; y <= r.MaxY; y++ {
			cols = append(cols, y)
		}
	}

	cells := make([]Cell, 0, (r.MaxX-r.MinX+1)*len(cols))
	for x := r.MinX; x <= r.MaxX; x++ {
		for _, y := range cols {
			cells = append(cells, Cell{X: x, Y: y})
		}
	}
	return cells
}

func normalizeLon(lon float64) float64 {
	for lon < -180 {
		lon += 360
	}
	for lon > 180 {
		lon -= 360
	}
	return lon
}

// Hit is a radius query match.
type Hit struct {
	ID       string
	Point    domain.Coordinates
	Distance float64
}

// Grid is a concurrency-safe spatial index of string ids.
type Grid struct {
	mu      sync.RWMutex
	size    float64
	buckets map[Cell]map[string]domain.Coordinates
	points  map[string]domain.Coordinates
}

// NewGrid creates a grid with the given cell size in degrees.
// A non-positive size uses DefaultCellSize.
func NewGrid(size float64) *Grid {
	if size <= 0 {
		size = DefaultCellSize
	}
	return &Grid{
		size:    size,
		buckets: make(map[Cell]map[string]domain.Coordinates),
		points:  make(map[string]domain.Coordinates),
	}
}

// CellSize returns the cell edge in degrees.
func (g *Grid) CellSize() float64 {
	return g.size
}

// Insert adds or moves id to p.
func (g *Grid) Insert(id string, p domain.Coordinates) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.removeLocked(id)
	cell := CellOf(p, g.size)
	bucket, ok := g.buckets[cell]
	if !ok {
		bucket = make(map[string]domain.Coordinates)
		g.buckets[cell] = bucket
	}
	bucket[id] = p
	g.points[id] = p
}

// Remove deletes id from the grid. Removing an unknown id is a no-op.
func (g *Grid) Remove(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeLocked(id)
}

func (g *Grid) removeLocked(id string) {
	p, ok := g.points[id]
	if !ok {
		return
	}
	cell := CellOf(p, g.size)
	if bucket, ok := g.buckets[cell]; ok {
		delete(bucket, id)
		if len(bucket) == 0 {
			delete(g.buckets, cell)
		}
	}
	delete(g.points, id)
}

// Len returns the number of indexed ids.
func (g *Grid) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.points)
}

// Near returns every id within radius meters of center, nearest first.
func (g *Grid) Near(center domain.Coordinates, radius float64) []Hit {
	g.mu.RLock()
	defer g.mu.RUnlock()

	r := CellsAround(center, radius, g.size)

	var hits []Hit
	visit := func(bucket map[string]domain.Coordinates) {
		for id, p := range bucket {
			if d := domain.Distance(center, p); d <= radius {
				hits = append(hits, Hit{ID: id, Point: p, Distance: d})
			}
		}
	}

	cells := r.Cells(g.size)
	if len(cells) > len(g.buckets) {
		// Fewer occupied buckets than candidate cells.
		for cell, bucket := range g.buckets {
			if cell.X >= r.MinX && cell.X <= r.MaxX && r.ContainsY(cell.Y) {
				visit(bucket)
			}
		}
	} else {
		for _, cell := range cells {
			if bucket, ok := g.buckets[cell]; ok {
				visit(bucket)
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance == hits[j].Distance {
			return hits[i].ID < hits[j].ID
		}
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}
