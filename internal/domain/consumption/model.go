package consumption

import (
	"errors"
	"time"
)

type Origin string

const (
	OriginManual Origin = "manual"
	OriginSync   Origin = "sync"
)

var (
	ErrValidation       = errors.New("invalid consumption")
	ErrMaterialNotFound = errors.New("material not found")
)

// Event is one "medição": a recorded use of at most one material on a project.
// Events are append-only.
type Event struct {
	ID         int64
	MaterialID *int64 // nil: no material, nothing is debited
	Quantity   float64
	Project    string
	Origin     Origin
	UserID     string
	CreatedAt  time.Time

	Attributes
}

// Attributes are the descriptive fields of a field report. Empty strings and
// nil pointers mean "not informed".
type Attributes struct {
	Day       string // ISO date, or the raw text when it could not be parsed
	Week      string
	StartTime string // HH:MM
	EndTime   string

	Client           string
	Shift            string
	Team             string
	Supervisor       string
	LeadTechnician   string
	TechniciansCount *float64
	TechnicianNames  string
	IntervalType     string
	AccessType       string
	Blade            string
	Tower            string
	Platform         string
	HourType         string
	EventsCount      *float64

	DamageType     string
	DamageCode     string
	DamageWidthMM  *float64
	DamageLengthMM *float64
	ProcessStep    string
	SandingStep    string

	Resin Compound
	Mass  Compound
	Core  Core
	PU    Compound
	Gel   Compound

	Rework *bool
}

// Compound describes one two-part material applied during a repair.
type Compound struct {
	Type           string
	Quantity       *float64 // resin/mass: quantity, PU/gel: weight
	Catalyst       string
	CatalystWeight *float64
	Batch          string
	Expiry         string
}

type Core struct {
	Type        string
	ThicknessMM *float64
	Quantity    *float64
}

// SyncKey approximates "this external row was already ingested". The sheet
// has no stable row identity, so two distinct jobs sharing every field
// collapse into one event.
type SyncKey struct {
	MaterialID int64
	Day        string
	StartTime  string
	EndTime    string
	Project    string
	Team       string
}

func (e *Event) SyncKey() SyncKey {
	k := SyncKey{
		Day:       e.Day,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Project:   e.Project,
		Team:      e.Team,
	}
	if e.MaterialID != nil {
		k.MaterialID = *e.MaterialID
	}
	return k
}

// Filter narrows List. Zero values mean "any".
type Filter struct {
	Project    string
	MaterialID int64
	Limit      uint64
	Offset     uint64
}

// Listed is an event joined with the identifying fields of its material.
type Listed struct {
	Event
	MaterialCode        string
	MaterialDescription string
	MaterialUnit        string
}
