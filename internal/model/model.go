package model

// Category is one of the three top-level schedule groupings.
type Category string

const (
	CategoryDepartment Category = "department"
	CategoryCultural   Category = "cultural"
	CategorySports     Category = "sports"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryDepartment, CategoryCultural, CategorySports:
		return true
	}
	return false
}

// EventType is the closed set of department event kinds.
type EventType string

const (
	TypeTechnical    EventType = "Technical"
	TypeNonTechnical EventType = "Non-Technical"
	TypeWorkshop     EventType = "Workshop"
	TypeQuiz         EventType = "Quiz"
	TypeSeminar      EventType = "Seminar"
)

// Event is a single scheduled fest event.
//
// StartTime and EndTime are wall-clock "HH:MM" strings in 24-hour form and are
// kept verbatim from the catalog; parsing happens in internal/timeline so that
// malformed values degrade instead of failing the catalog load.
//
// Department events carry Type, sports events carry Category ("M", "W",
// "M&W", "NCC"), cultural events carry neither.
type Event struct {
	ID          string    `yaml:"id" json:"id"`
	Name        string    `yaml:"name" json:"name"`
	Venue       string    `yaml:"venue" json:"venue"`
	StartTime   string    `yaml:"start" json:"startTime"`
	EndTime     string    `yaml:"end" json:"endTime"`
	Day         int       `yaml:"day" json:"day"`
	Description string    `yaml:"description" json:"description"`
	Type        EventType `yaml:"type,omitempty" json:"type,omitempty"`
	Category    string    `yaml:"category,omitempty" json:"category,omitempty"`
}

// Label returns the event's type or sports category, whichever is set.
func (e Event) Label() string {
	if e.Type != "" {
		return string(e.Type)
	}
	return e.Category
}

// Department is an academic department hosting its own events.
type Department struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	ShortName string `yaml:"short_name" json:"shortName"`
	Color     string `yaml:"color" json:"color"`
	Icon      string `yaml:"icon" json:"icon"`
}

// Contact is a named coordinator with a phone number.
type Contact struct {
	Name  string `yaml:"name" json:"name"`
	Phone string `yaml:"phone" json:"phone"`
}

// EventContacts lists the coordinators responsible for a single event.
type EventContacts struct {
	EventName    string    `yaml:"event" json:"eventName"`
	Coordinators []Contact `yaml:"coordinators" json:"coordinators"`
}

// Coordinators is the contact directory of a department or category.
//
// Departments have one staff and one student coordinator; the cultural and
// sports groups list several staff coordinators instead. AllEvents is used by
// departments that do not name per-event coordinators.
type Coordinators struct {
	Staff     []Contact       `yaml:"staff" json:"staff"`
	Student   []Contact       `yaml:"student,omitempty" json:"student,omitempty"`
	Events    []EventContacts `yaml:"events,omitempty" json:"events,omitempty"`
	AllEvents *Contact        `yaml:"all_events,omitempty" json:"allEvents,omitempty"`
}
