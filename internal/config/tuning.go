package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/banshee-data/firescene/internal/scene"
	"github.com/banshee-data/firescene/internal/units"
)

// DefaultConfigPath is the path to the canonical pipeline defaults file.
const DefaultConfigPath = "config/scene.defaults.json"

// PipelineConfig is the root configuration of a scene generation run.
// Every field is optional; the Get* methods supply defaults for fields
// that are not set, so partial configs are safe.
type PipelineConfig struct {
	// Target simulation volume, meters
	SpaceX *float64 `json:"space_x,omitempty"`
	SpaceY *float64 `json:"space_y,omitempty"`
	SpaceZ *float64 `json:"space_z,omitempty"`

	// Material clustering
	PercentileLow  *float64 `json:"percentile_low,omitempty"`
	PercentileHigh *float64 `json:"percentile_high,omitempty"`
	Workers        *int     `json:"workers,omitempty"`

	// Input cloud
	CloudDepthUnit *string          `json:"cloud_depth_unit,omitempty"` // "mm", "cm" or "m"
	MaxDepthM      *float64         `json:"max_depth_m,omitempty"`
	Calibration    *CalibrationFile `json:"calibration,omitempty"`

	// Projection image handed to the detector and classifier
	ImageWidth  *int `json:"image_width,omitempty"`
	ImageHeight *int `json:"image_height,omitempty"`

	// Solver input
	CHID              *string  `json:"chid,omitempty"`
	Title             *string  `json:"title,omitempty"`
	MeshCellsPerMeter *float64 `json:"mesh_cells_per_meter,omitempty"`
	TEndS             *float64 `json:"t_end_s,omitempty"`
	HRRPUA            *float64 `json:"hrrpua,omitempty"`

	// Table overrides; empty means the embedded defaults
	CategoriesPath *string `json:"categories_path,omitempty"`
	MaterialsPath  *string `json:"materials_path,omitempty"`
	TemplatesPath  *string `json:"templates_path,omitempty"`
}

// CalibrationFile carries the camera intrinsics and reference
// correspondences. Omitted parts fall back to the stock calibration.
type CalibrationFile struct {
	DepthUnit  *string          `json:"depth_unit,omitempty"`
	Intrinsics *IntrinsicsFile  `json:"intrinsics,omitempty"`
	References []ReferencePoint `json:"references,omitempty"`
}

// IntrinsicsFile is the JSON form of pinhole camera intrinsics.
type IntrinsicsFile struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Fx     float64   `json:"fx"`
	Fy     float64   `json:"fy"`
	Ppx    float64   `json:"ppx"`
	Ppy    float64   `json:"ppy"`
	Model  string    `json:"model,omitempty"`
	Coeffs []float64 `json:"coeffs,omitempty"`
}

// ReferencePoint pins a pixel+depth sample to a world point.
type ReferencePoint struct {
	PixelDepth [3]float64 `json:"pixel_depth"` // u, v, depth (calibration depth unit)
	World      [3]float64 `json:"world"`       // meters
}

// chidPattern limits the run id to characters the solver accepts in file
// names.
var chidPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,60}$`)

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyPipelineConfig returns a PipelineConfig with all fields set to nil.
func EmptyPipelineConfig() *PipelineConfig {
	return &PipelineConfig{}
}

// DefaultPipelineConfig returns a config with every scalar field populated
// with its default value.
func DefaultPipelineConfig() *PipelineConfig {
	c := EmptyPipelineConfig()
	return &PipelineConfig{
		SpaceX:            ptrFloat64(c.GetSpaceX()),
		SpaceY:            ptrFloat64(c.GetSpaceY()),
		SpaceZ:            ptrFloat64(c.GetSpaceZ()),
		PercentileLow:     ptrFloat64(c.GetPercentileLow()),
		PercentileHigh:    ptrFloat64(c.GetPercentileHigh()),
		Workers:           ptrInt(c.GetWorkers()),
		CloudDepthUnit:    ptrString(c.GetCloudDepthUnit()),
		MaxDepthM:         ptrFloat64(c.GetMaxDepthM()),
		ImageWidth:        ptrInt(c.GetImageWidth()),
		ImageHeight:       ptrInt(c.GetImageHeight()),
		CHID:              ptrString(c.GetCHID()),
		Title:             ptrString(c.GetTitle()),
		MeshCellsPerMeter: ptrFloat64(c.GetMeshCellsPerMeter()),
		TEndS:             ptrFloat64(c.GetTEndS()),
		HRRPUA:            ptrFloat64(c.GetHRRPUA()),
	}
}

// LoadPipelineConfig loads a PipelineConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPipelineConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents. Panics if the file
// cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *PipelineConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/scene/pipeline/
		"../../../../" + DefaultConfigPath, // from internal/scene/storage/sqlite/
	}
	for _, path := range candidates {
		if cfg, err := LoadPipelineConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *PipelineConfig) Validate() error {
	for _, dim := range []struct {
		name string
		v    *float64
	}{
		{"space_x", c.SpaceX},
		{"space_y", c.SpaceY},
		{"space_z", c.SpaceZ},
	} {
		if dim.v != nil && *dim.v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", dim.name, *dim.v)
		}
	}

	low, high := c.GetPercentileLow(), c.GetPercentileHigh()
	if low < 0 || high > 100 || low >= high {
		return fmt.Errorf("percentile_low/percentile_high must satisfy 0 <= low < high <= 100, got %f/%f", low, high)
	}

	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}

	if !units.IsValid(c.GetCloudDepthUnit()) {
		return fmt.Errorf("cloud_depth_unit must be one of %s, got %q", units.GetValidUnitsString(), c.GetCloudDepthUnit())
	}
	if c.MaxDepthM != nil && *c.MaxDepthM < 0 {
		return fmt.Errorf("max_depth_m must be non-negative, got %f", *c.MaxDepthM)
	}

	if c.ImageWidth != nil && *c.ImageWidth < 1 {
		return fmt.Errorf("image_width must be positive, got %d", *c.ImageWidth)
	}
	if c.ImageHeight != nil && *c.ImageHeight < 1 {
		return fmt.Errorf("image_height must be positive, got %d", *c.ImageHeight)
	}

	if c.MeshCellsPerMeter != nil && *c.MeshCellsPerMeter <= 0 {
		return fmt.Errorf("mesh_cells_per_meter must be positive, got %f", *c.MeshCellsPerMeter)
	}
	if !chidPattern.MatchString(c.GetCHID()) {
		return fmt.Errorf("chid must match %s, got %q", chidPattern, c.GetCHID())
	}
	if c.TEndS != nil && *c.TEndS <= 0 {
		return fmt.Errorf("t_end_s must be positive, got %f", *c.TEndS)
	}

	if cal := c.Calibration; cal != nil {
		if cal.DepthUnit != nil && !units.IsValid(*cal.DepthUnit) {
			return fmt.Errorf("calibration.depth_unit must be one of %s, got %q", units.GetValidUnitsString(), *cal.DepthUnit)
		}
		if n := len(cal.References); n > 0 && n < 4 {
			return fmt.Errorf("calibration.references needs at least 4 points, got %d: %w", n, scene.ErrInsufficientReferencePoints)
		}
		if in := cal.Intrinsics; in != nil {
			if in.Fx <= 0 || in.Fy <= 0 {
				return fmt.Errorf("calibration.intrinsics focal lengths must be positive")
			}
			if len(in.Coeffs) > 5 {
				return fmt.Errorf("calibration.intrinsics.coeffs has %d entries (max 5)", len(in.Coeffs))
			}
		}
	}

	return nil
}

// GetSpaceX returns the space_x value or the default.
func (c *PipelineConfig) GetSpaceX() float64 {
	if c.SpaceX == nil {
		return 10.0
	}
	return *c.SpaceX
}

// GetSpaceY returns the space_y value or the default.
func (c *PipelineConfig) GetSpaceY() float64 {
	if c.SpaceY == nil {
		return 3.0
	}
	return *c.SpaceY
}

// GetSpaceZ returns the space_z value or the default.
func (c *PipelineConfig) GetSpaceZ() float64 {
	if c.SpaceZ == nil {
		return 8.0
	}
	return *c.SpaceZ
}

// GetPercentileLow returns the percentile_low value or the default.
func (c *PipelineConfig) GetPercentileLow() float64 {
	if c.PercentileLow == nil {
		return 10
	}
	return *c.PercentileLow
}

// GetPercentileHigh returns the percentile_high value or the default.
func (c *PipelineConfig) GetPercentileHigh() float64 {
	if c.PercentileHigh == nil {
		return 90
	}
	return *c.PercentileHigh
}

// GetWorkers returns the workers value or the default.
func (c *PipelineConfig) GetWorkers() int {
	if c.Workers == nil {
		return 4
	}
	return *c.Workers
}

// GetCloudDepthUnit returns the cloud_depth_unit value or the default.
func (c *PipelineConfig) GetCloudDepthUnit() string {
	if c.CloudDepthUnit == nil || *c.CloudDepthUnit == "" {
		return units.M
	}
	return *c.CloudDepthUnit
}

// GetMaxDepthM returns the max_depth_m value or the default.
func (c *PipelineConfig) GetMaxDepthM() float64 {
	if c.MaxDepthM == nil {
		return 10.0
	}
	return *c.MaxDepthM
}

// GetCalibrationDepthUnit returns calibration.depth_unit or the default.
func (c *PipelineConfig) GetCalibrationDepthUnit() string {
	if c.Calibration == nil || c.Calibration.DepthUnit == nil || *c.Calibration.DepthUnit == "" {
		return units.MM
	}
	return *c.Calibration.DepthUnit
}

// GetImageWidth returns the image_width value or the default.
func (c *PipelineConfig) GetImageWidth() int {
	if c.ImageWidth == nil {
		return 640
	}
	return *c.ImageWidth
}

// GetImageHeight returns the image_height value or the default.
func (c *PipelineConfig) GetImageHeight() int {
	if c.ImageHeight == nil {
		return 480
	}
	return *c.ImageHeight
}

// GetCHID returns the chid value or the default.
func (c *PipelineConfig) GetCHID() string {
	if c.CHID == nil || *c.CHID == "" {
		return "room_simulation"
	}
	return *c.CHID
}

// GetTitle returns the title value or the default.
func (c *PipelineConfig) GetTitle() string {
	if c.Title == nil {
		return "Room with detected objects"
	}
	return *c.Title
}

// GetMeshCellsPerMeter returns the mesh_cells_per_meter value or the default.
func (c *PipelineConfig) GetMeshCellsPerMeter() float64 {
	if c.MeshCellsPerMeter == nil {
		return 10
	}
	return *c.MeshCellsPerMeter
}

// GetTEndS returns the t_end_s value or the default.
func (c *PipelineConfig) GetTEndS() float64 {
	if c.TEndS == nil {
		return 10
	}
	return *c.TEndS
}

// GetHRRPUA returns the hrrpua value or the default.
func (c *PipelineConfig) GetHRRPUA() float64 {
	if c.HRRPUA == nil {
		return 1000
	}
	return *c.HRRPUA
}
