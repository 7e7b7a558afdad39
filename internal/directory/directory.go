package directory

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jwalitptl/ayusutra-api/internal/model"
	apperrors "github.com/jwalitptl/ayusutra-api/pkg/errors"
)

var ErrDoctorNotFound = errors.New("doctor not found")

// Directory owns the canonical doctor list. It is loaded once and is safe
// for concurrent reads.
type Directory struct {
	doctors []model.Doctor
	byID    map[string]int
}

// Load builds a Directory from a provider. Duplicate IDs are rejected.
func Load(ctx context.Context, p Provider) (*Directory, error) {
	doctors, err := p.Doctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load doctors: %w", err)
	}
	return New(doctors)
}

func New(doctors []model.Doctor) (*Directory, error) {
	d := &Directory{
		doctors: make([]model.Doctor, len(doctors)),
		byID:    make(map[string]int, len(doctors)),
	}
	copy(d.doctors, doctors)

	for i, doc := range d.doctors {
		if doc.ID == "" {
			return nil, fmt.Errorf("doctor at position %d has no id", i)
		}
		if _, dup := d.byID[doc.ID]; dup {
			return nil, fmt.Errorf("duplicate doctor id %q", doc.ID)
		}
		if doc.Distance < 0 || math.IsNaN(doc.Distance) || math.IsInf(doc.Distance, 0) {
			return nil, fmt.Errorf("doctor %q has invalid distance", doc.ID)
		}
		if doc.Rating < 0 || doc.Rating > 5 || math.IsNaN(doc.Rating) {
			return nil, fmt.Errorf("doctor %q has rating outside 0-5", doc.ID)
		}
		d.byID[doc.ID] = i
	}

	return d, nil
}

// All returns a copy of every record in load order.
func (d *Directory) All() []model.Doctor {
	out := make([]model.Doctor, len(d.doctors))
	copy(out, d.doctors)
	return out
}

func (d *Directory) Get(id string) (*model.Doctor, error) {
	i, ok := d.byID[id]
	if !ok {
		return nil, apperrors.NotFound("doctor "+id, ErrDoctorNotFound)
	}
	doc := d.doctors[i]
	return &doc, nil
}

func (d *Directory) Len() int {
	return len(d.doctors)
}
