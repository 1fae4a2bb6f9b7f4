// Package roomseed reads the startup seed of the room inventory from JSON or YAML documents.
//
// Both formats share one layout:
//
//	rooms:
//	  - room_id: 101
//	    type: Standard
//	    units: 5
//
// Every room id must be within 100..999 and appear once, units must not be negative.
package roomseed

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/AntonStoeckl/room-inventory-go/inventory"
)

var (
	// ErrParsingSeedFailed is returned when a seed document is not valid JSON or YAML.
	ErrParsingSeedFailed = errors.New("parsing room seed failed")

	// ErrInvalidSeedEntry is returned when a seed document parses but violates the seed rules.
	ErrInvalidSeedEntry = errors.New("invalid room seed entry")

	// ErrUnsupportedSeedFormat is returned by ReadFile for file extensions other than .json, .yaml and .yml.
	ErrUnsupportedSeedFormat = errors.New("unsupported room seed format")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type document struct {
	Rooms []record `json:"rooms" yaml:"rooms" validate:"min=1,unique=RoomID,dive"`
}

type record struct {
	RoomID int    `json:"room_id" yaml:"room_id" validate:"gte=100,lte=999"`
	Type   string `json:"type" yaml:"type" validate:"max=64"`
	Units  int    `json:"units" yaml:"units" validate:"gte=0"`
}

// ParseJSON parses a JSON seed document.
func ParseJSON(data []byte) ([]inventory.SeedEntry, error) {
	var doc document
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrParsingSeedFailed, err)
	}

	return doc.toSeed()
}

// ParseYAML parses a YAML seed document.
func ParseYAML(data []byte) ([]inventory.SeedEntry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrParsingSeedFailed, err)
	}

	return doc.toSeed()
}

// ReadFile reads a seed file, choosing the parser by extension.
func ReadFile(path string) ([]inventory.SeedEntry, error) {
	var parse func([]byte) ([]inventory.SeedEntry, error)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		parse = ParseJSON
	case ".yaml", ".yml":
		parse = ParseYAML
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSeedFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading room seed %s: %w", path, err)
	}

	return parse(data)
}

func (d document) toSeed() ([]inventory.SeedEntry, error) {
	if err := validate.Struct(d); err != nil {
		return nil, errors.Join(ErrInvalidSeedEntry, err)
	}

	seed := make([]inventory.SeedEntry, 0, len(d.Rooms))
	for _, r := range d.Rooms {
		seed = append(seed, inventory.SeedEntry{
			RoomID: inventory.RoomID(r.RoomID),
			Type:   strings.TrimSpace(r.Type),
			Units:  r.Units,
		})
	}

	return seed, nil
}
