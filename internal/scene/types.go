package scene

// Point is one sensor sample after coordinate transformation.
// ObjectNum 0 means the point was not claimed by any detection; an empty
// Material means no material label was available for its pixel.
type Point struct {
	X, Y, Z   float64 // World frame position
	U, V      int     // Source pixel
	R, G, B   uint8   // Color
	ObjectNum int     // Object identity (1-based), 0 = unassigned
	Label     string  // Semantic label inherited from the detection
	Material  string  // Material name from the classifier vocabulary
}

// HasObject reports whether the point carries an object identity.
func (p Point) HasObject() bool { return p.ObjectNum > 0 }

// PointCloud is an ordered point table. Stages never mutate a cloud they
// receive; they return a new one.
type PointCloud []Point

// Clone returns a copy of the cloud that shares no storage with pc.
func (pc PointCloud) Clone() PointCloud {
	if pc == nil {
		return nil
	}
	out := make(PointCloud, len(pc))
	copy(out, pc)
	return out
}

// Bounds is an axis-aligned box. JSON keys match the scene document.
type Bounds struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
	ZMin float64 `json:"z_min"`
	ZMax float64 `json:"z_max"`
}

// SizeX returns the extent along X.
func (b Bounds) SizeX() float64 { return b.XMax - b.XMin }

// SizeY returns the extent along Y (height).
func (b Bounds) SizeY() float64 { return b.YMax - b.YMin }

// SizeZ returns the extent along Z (floor depth).
func (b Bounds) SizeZ() float64 { return b.ZMax - b.ZMin }

// FootprintArea returns the X–Z area.
func (b Bounds) FootprintArea() float64 { return b.SizeX() * b.SizeZ() }

// Center returns the box centre.
func (b Bounds) Center() (x, y, z float64) {
	return (b.XMin + b.XMax) / 2, (b.YMin + b.YMax) / 2, (b.ZMin + b.ZMax) / 2
}

// Contains reports whether o lies entirely inside b.
func (b Bounds) Contains(o Bounds) bool {
	return o.XMin >= b.XMin && o.XMax <= b.XMax &&
		o.YMin >= b.YMin && o.YMax <= b.YMax &&
		o.ZMin >= b.ZMin && o.ZMax <= b.ZMax
}

// ObjectRecord is the per-object aggregate produced by material clustering.
// Bounds are computed from the percentile-trimmed support of the dominant
// material, in the world frame.
type ObjectRecord struct {
	ObjectNum  int
	Label      string
	Material   string
	MaterialID int // vocabulary position, -1 when the material is unknown
	Bounds     Bounds
	PointCount int // points supporting the dominant material
}

// PlacedObject is an ObjectRecord with its packed position inside the
// target volume. X and Z are rewritten by packing, Y is the rescaled
// record height.
type PlacedObject struct {
	Record ObjectRecord
	Bounds Bounds
}

// SpaceDimensions is the size of the simulated volume in meters.
type SpaceDimensions struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Scene is the packed room handed to the solver serializer.
type Scene struct {
	Space   SpaceDimensions
	Objects []PlacedObject
}
