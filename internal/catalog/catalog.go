// Package catalog holds the festival's static content: departments, their
// events, the cultural and sports programmes and the coordinator directory.
//
// A Catalog is immutable once parsed. Content changes arrive as a new
// Catalog swapped into a Store.
package catalog

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"udhayam/internal/model"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

var (
	ErrUnknownDepartment = errors.New("unknown department")
	ErrUnknownCategory   = errors.New("unknown category")
)

// document mirrors catalog.yaml.
type document struct {
	Departments []departmentEntry `yaml:"departments"`
	Cultural    groupEntry        `yaml:"cultural"`
	Sports      groupEntry        `yaml:"sports"`
}

type departmentEntry struct {
	model.Department `yaml:",inline"`
	Events           []model.Event      `yaml:"events"`
	Coordinators     model.Coordinators `yaml:"coordinators"`
}

type groupEntry struct {
	Events       []model.Event      `yaml:"events"`
	Coordinators model.Coordinators `yaml:"coordinators"`
}

// Catalog is a parsed, validated snapshot of the festival content.
type Catalog struct {
	version     string
	departments []departmentEntry
	byID        map[string]int
	cultural    groupEntry
	sports      groupEntry
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// LoadFile reads and parses a catalog YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes catalog YAML. Unknown keys, duplicate ids and days outside
// the festival are rejected; event times are kept verbatim and judged at
// layout time.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	c := &Catalog{
		departments: doc.Departments,
		byID:        make(map[string]int, len(doc.Departments)),
		cultural:    doc.Cultural,
		sports:      doc.Sports,
	}

	var errs []error
	eventIDs := map[string]bool{}
	checkEvents := func(owner string, events []model.Event) {
		for i, ev := range events {
			switch {
			case ev.ID == "":
				errs = append(errs, fmt.Errorf("%s: event #%d has no id", owner, i+1))
			case eventIDs[ev.ID]:
				errs = append(errs, fmt.Errorf("%s: duplicate event id %q", owner, ev.ID))
			}
			eventIDs[ev.ID] = true
			if ev.Day < 1 || ev.Day > 2 {
				errs = append(errs, fmt.Errorf("%s: event %q has day %d, want 1 or 2", owner, ev.ID, ev.Day))
			}
		}
	}

	for i, d := range doc.Departments {
		if d.ID == "" {
			errs = append(errs, fmt.Errorf("department #%d has no id", i+1))
			continue
		}
		if _, dup := c.byID[d.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate department id %q", d.ID))
			continue
		}
		c.byID[d.ID] = i
		checkEvents("department "+d.ID, d.Events)
	}
	checkEvents("cultural", doc.Cultural.Events)
	checkEvents("sports", doc.Sports.Events)

	if len(errs) > 0 {
		return nil, fmt.Errorf("catalog: invalid: %w", errors.Join(errs...))
	}

	sum := sha256.Sum256(data)
	c.version = hex.EncodeToString(sum[:8])
	return c, nil
}

// Version identifies the content the catalog was parsed from.
func (c *Catalog) Version() string {
	return c.version
}

// Departments returns all departments in catalog order.
func (c *Catalog) Departments() []model.Department {
	out := make([]model.Department, len(c.departments))
	for i, d := range c.departments {
		out[i] = d.Department
	}
	return out
}

// SearchDepartments returns departments whose name or short name contains q,
// case-insensitively. An empty query returns all departments.
func (c *Catalog) SearchDepartments(q string) []model.Department {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return c.Departments()
	}
	var out []model.Department
	for _, d := range c.departments {
		if strings.Contains(strings.ToLower(d.Name), q) || strings.Contains(strings.ToLower(d.ShortName), q) {
			out = append(out, d.Department)
		}
	}
	return out
}

// Department looks up a department by id.
func (c *Catalog) Department(id string) (model.Department, error) {
	i, ok := c.byID[id]
	if !ok {
		return model.Department{}, fmt.Errorf("%w: %q", ErrUnknownDepartment, id)
	}
	return c.departments[i].Department, nil
}

// Events returns the event list of a category. deptID is only consulted for
// department events. The returned slice is a copy.
func (c *Catalog) Events(cat model.Category, deptID string) ([]model.Event, error) {
	var src []model.Event
	switch cat {
	case model.CategoryDepartment:
		i, ok := c.byID[deptID]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDepartment, deptID)
		}
		src = c.departments[i].Events
	case model.CategoryCultural:
		src = c.cultural.Events
	case model.CategorySports:
		src = c.sports.Events
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
	return append([]model.Event(nil), src...), nil
}

// Coordinators returns the contact directory of a category or department.
func (c *Catalog) Coordinators(cat model.Category, deptID string) (model.Coordinators, error) {
	switch cat {
	case model.CategoryDepartment:
		i, ok := c.byID[deptID]
		if !ok {
			return model.Coordinators{}, fmt.Errorf("%w: %q", ErrUnknownDepartment, deptID)
		}
		return c.departments[i].Coordinators, nil
	case model.CategoryCultural:
		return c.cultural.Coordinators, nil
	case model.CategorySports:
		return c.sports.Coordinators, nil
	default:
		return model.Coordinators{}, fmt.Errorf("%w: %q", ErrUnknownCategory, cat)
	}
}

// EventCount returns the number of events across all categories.
func (c *Catalog) EventCount() int {
	n := len(c.cultural.Events) + len(c.sports.Events)
	for _, d := range c.departments {
		n += len(d.Events)
	}
	return n
}
