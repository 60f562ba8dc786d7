package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"navarch/core"
)

// hullFile is the on-disk hull definition format, accepted as YAML or JSON.
type hullFile struct {
	Vessel struct {
		Name        string `yaml:"name" json:"name"`
		Description string `yaml:"description" json:"description"`
	} `yaml:"vessel" json:"vessel"`

	Geometry struct {
		Stations []struct {
			Index int     `yaml:"index" json:"index"`
			X     float64 `yaml:"x" json:"x"`
		} `yaml:"stations" json:"stations"`
		Waterlines []struct {
			Index int     `yaml:"index" json:"index"`
			Z     float64 `yaml:"z" json:"z"`
		} `yaml:"waterlines" json:"waterlines"`
		Offsets []struct {
			StationIndex   int     `yaml:"station_index" json:"station_index"`
			WaterlineIndex int     `yaml:"waterline_index" json:"waterline_index"`
			HalfBreadth    float64 `yaml:"half_breadth" json:"half_breadth"`
		} `yaml:"offsets" json:"offsets"`
	} `yaml:"geometry" json:"geometry"`

	Loadcases []struct {
		Name string   `yaml:"name" json:"name"`
		Rho  float64  `yaml:"rho" json:"rho"`
		KG   *float64 `yaml:"kg" json:"kg"`
		LCG  *float64 `yaml:"lcg" json:"lcg"`
		TCG  *float64 `yaml:"tcg" json:"tcg"`
	} `yaml:"loadcases" json:"loadcases"`
}

// hullSchema validates JSON hull files before decoding, so malformed input
// fails with a field-level message instead of a zero-valued grid.
const hullSchema = `{
	"type": "object",
	"required": ["vessel", "geometry"],
	"properties": {
		"vessel": {
			"type": "object",
			"required": ["name"],
			"properties": {
				"name": {"type": "string", "minLength": 1},
				"description": {"type": "string"}
			}
		},
		"geometry": {
			"type": "object",
			"required": ["stations", "waterlines", "offsets"],
			"properties": {
				"stations": {
					"type": "array",
					"minItems": 2,
					"items": {
						"type": "object",
						"required": ["index", "x"],
						"properties": {
							"index": {"type": "integer"},
							"x": {"type": "number"}
						}
					}
				},
				"waterlines": {
					"type": "array",
					"minItems": 2,
					"items": {
						"type": "object",
						"required": ["index", "z"],
						"properties": {
							"index": {"type": "integer"},
							"z": {"type": "number", "minimum": 0}
						}
					}
				},
				"offsets": {
					"type": "array",
					"minItems": 4,
					"items": {
						"type": "object",
						"required": ["station_index", "waterline_index", "half_breadth"],
						"properties": {
							"station_index": {"type": "integer"},
							"waterline_index": {"type": "integer"},
							"half_breadth": {"type": "number", "minimum": 0}
						}
					}
				}
			}
		},
		"loadcases": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "rho"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"rho": {"type": "number", "exclusiveMinimum": 0},
					"kg": {"type": "number", "minimum": 0},
					"lcg": {"type": "number"},
					"tcg": {"type": "number"}
				}
			}
		}
	}
}`

// parseHullFile decodes a hull definition. JSON input is validated against
// the schema first; YAML is decoded directly and relies on the geometry
// grid validation downstream.
func parseHullFile(data []byte, ext string) (*hullFile, error) {
	var hf hullFile
	switch ext {
	case ".json":
		schemaLoader := gojsonschema.NewStringLoader(hullSchema)
		docLoader := gojsonschema.NewBytesLoader(data)
		result, err := gojsonschema.Validate(schemaLoader, docLoader)
		if err != nil {
			return nil, fmt.Errorf("failed to validate JSON: %w", err)
		}
		if !result.Valid() {
			var msgs []string
			for _, desc := range result.Errors() {
				msgs = append(msgs, desc.String())
			}
			return nil, fmt.Errorf("hull file invalid: %s", strings.Join(msgs, "; "))
		}
		if err := yaml.Unmarshal(data, &hf); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &hf); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported file extension %q (want .yaml, .yml, or .json)", ext)
	}

	if hf.Vessel.Name == "" {
		return nil, fmt.Errorf("hull file missing vessel name")
	}
	return &hf, nil
}

// geometryParts converts the file representation into storable rows.
func (hf *hullFile) geometryParts() ([]core.Station, []core.Waterline, []core.Offset) {
	var stations []core.Station
	for _, s := range hf.Geometry.Stations {
		stations = append(stations, core.Station{Index: s.Index, X: s.X})
	}
	var waterlines []core.Waterline
	for _, w := range hf.Geometry.Waterlines {
		waterlines = append(waterlines, core.Waterline{Index: w.Index, Z: w.Z})
	}
	var offsets []core.Offset
	for _, o := range hf.Geometry.Offsets {
		offsets = append(offsets, core.Offset{
			StationIndex:   o.StationIndex,
			WaterlineIndex: o.WaterlineIndex,
			HalfBreadth:    o.HalfBreadth,
		})
	}
	return stations, waterlines, offsets
}

// newImportCmd creates the 'import' subcommand
func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a hull definition file",
		Long: `Import a vessel with its offset table and loadcases from a YAML or JSON
hull definition file. The offset grid must be complete; a partial grid is
rejected without writing anything.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()

			filename := args[0]
			if err := validateFilePath(filename); err != nil {
				return fmt.Errorf("invalid file path: %w", err)
			}
			fileInfo, err := os.Stat(filename)
			if err != nil {
				return fmt.Errorf("failed to stat file: %w", err)
			}
			if fileInfo.Size() > maxImportFileSize {
				return fmt.Errorf("file too large: maximum size is %d MB, got %d bytes",
					maxImportFileSize/(1024*1024), fileInfo.Size())
			}

			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("failed to read file: %w", err)
			}
			hf, err := parseHullFile(data, strings.ToLower(filepath.Ext(filename)))
			if err != nil {
				return err
			}

			store, cleanup, err := initStore()
			if err != nil {
				return err
			}
			defer cleanup()

			s := newSpinner("Importing hull...")
			vessel := &core.Vessel{
				ID:          uuid.New().String(),
				Name:        hf.Vessel.Name,
				Description: hf.Vessel.Description,
			}
			if err := store.CreateVessel(ctx, vessel); err != nil {
				stopSpinner(s)
				return fmt.Errorf("failed to create vessel: %w", err)
			}

			stations, waterlines, offsets := hf.geometryParts()
			if err := store.ReplaceGeometry(ctx, vessel.ID, stations, waterlines, offsets); err != nil {
				stopSpinner(s)
				// Leave no half-imported vessel behind.
				_ = store.DeleteVessel(ctx, vessel.ID)
				return fmt.Errorf("failed to store geometry: %w", err)
			}

			imported := 0
			for _, lc := range hf.Loadcases {
				loadcase := &core.Loadcase{
					ID:       uuid.New().String(),
					VesselID: vessel.ID,
					Name:     lc.Name,
					Rho:      lc.Rho,
					KG:       lc.KG,
					LCG:      lc.LCG,
					TCG:      lc.TCG,
				}
				if err := store.CreateLoadcase(ctx, loadcase); err != nil {
					stopSpinner(s)
					errorColor.Printf("✗ Failed to import loadcase %s: %v\n", lc.Name, err)
					continue
				}
				imported++
			}
			stopSpinner(s)

			if outputJSON {
				return printJSON(map[string]interface{}{
					"vessel_id":  vessel.ID,
					"stations":   len(stations),
					"waterlines": len(waterlines),
					"offsets":    len(offsets),
					"loadcases":  imported,
				})
			}
			successColor.Printf("✓ Imported %s (%s)\n", vessel.Name, vessel.ID)
			if !quiet {
				infoColor.Printf("  %d stations × %d waterlines, %d loadcases\n",
					len(stations), len(waterlines), imported)
			}
			return nil
		},
	}
}
