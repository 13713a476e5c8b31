// Package project persists segmentation results: a JSON sidecar with run
// metadata and the region table, plus a row-major binary label grid.
package project

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"tile-segmenter/internal/raster"
)

// labelMagic identifies the binary label grid format.
var labelMagic = [4]byte{'T', 'S', 'L', 'R'}

const labelVersion uint16 = 1

// File is the JSON sidecar written next to the binary label grid.
type File struct {
	Version  int       `json:"version"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Source image and run parameters, for provenance.
	ImagePath   string `json:"image_path,omitempty"`
	ImageWidth  int    `json:"image_width"`
	ImageHeight int    `json:"image_height"`
	TileWidth   int    `json:"tile_width,omitempty"`
	TileHeight  int    `json:"tile_height,omitempty"`

	// Derived region table for the saved raster.
	Regions []raster.Region `json:"regions"`
}

// New creates a sidecar for a label raster.
func New(labels *raster.LabelRaster, regions []raster.Region) *File {
	now := time.Now()
	return &File{
		Version:     1,
		Created:     now,
		Modified:    now,
		ImageWidth:  labels.W,
		ImageHeight: labels.H,
		Regions:     regions,
	}
}

// Save writes basePath+".json" (sidecar) and basePath+".labels" (grid).
func Save(basePath string, f *File, labels *raster.LabelRaster) error {
	f.Modified = time.Now()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(basePath+".json", data, 0644); err != nil {
		return fmt.Errorf("failed to write sidecar: %w", err)
	}
	if err := writeLabels(basePath+".labels", labels); err != nil {
		return fmt.Errorf("failed to write labels: %w", err)
	}
	return nil
}

// Load reads a saved result back: the sidecar and the label grid.
func Load(basePath string) (*File, *raster.LabelRaster, error) {
	data, err := os.ReadFile(basePath + ".json")
	if err != nil {
		return nil, nil, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, nil, fmt.Errorf("failed to parse sidecar: %w", err)
	}

	labels, err := readLabels(basePath + ".labels")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read labels: %w", err)
	}
	return &f, labels, nil
}

// writeLabels serializes the grid: magic, version, width, height, then the
// int32 pixels row-major, all little-endian.
func writeLabels(path string, labels *raster.LabelRaster) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(labelMagic[:]); err != nil {
		return err
	}
	header := []any{labelVersion, uint32(labels.W), uint32(labels.H)}
	for _, v := range header {
		if err := binary.Write(out, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return binary.Write(out, binary.LittleEndian, labels.Pix)
}

func readLabels(path string) (*raster.LabelRaster, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	var magic [4]byte
	if _, err := in.Read(magic[:]); err != nil {
		return nil, err
	}
	if magic != labelMagic {
		return nil, fmt.Errorf("not a label grid file")
	}

	var version uint16
	if err := binary.Read(in, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != labelVersion {
		return nil, fmt.Errorf("unsupported label grid version %d", version)
	}

	var w, h uint32
	if err := binary.Read(in, binary.LittleEndian, &w); err != nil {
		return nil, err
	}
	if err := binary.Read(in, binary.LittleEndian, &h); err != nil {
		return nil, err
	}

	labels := raster.New(int(w), int(h))
	if err := binary.Read(in, binary.LittleEndian, labels.Pix); err != nil {
		return nil, err
	}
	return labels, nil
}
