package elan

import (
	"fmt"

	"tierkit/internal/services"
)

// TimeslotID identifies a shared millisecond offset ("ts1", "ts2", ...).
type TimeslotID string

// AnnotationID identifies an annotation ("a1", "a2", ...).
type AnnotationID string

// TierKind discriminates aligned from referential tiers. It is decided once,
// at parse or build time, and carried on the tier rather than re-derived per
// lookup.
type TierKind int

const (
	// TierAligned tiers own their annotations' time boundaries.
	TierAligned TierKind = iota
	// TierReferential tiers borrow spans from a parent tier's annotations.
	TierReferential
)

// Timeslot is one entry in the document's shared time order. EAF permits
// slots without a time value; Defined distinguishes those from offset zero.
type Timeslot struct {
	ID      TimeslotID
	ValueMS int64
	Defined bool
}

// Annotation belongs to exactly one tier. Which field pair is meaningful is
// governed by the owning tier's Kind: aligned annotations carry two timeslot
// references, referential annotations carry a parent annotation reference
// and an optional previous-annotation link.
type Annotation struct {
	ID    AnnotationID
	Value string

	StartSlot TimeslotID
	EndSlot   TimeslotID

	Ref      AnnotationID
	Previous AnnotationID
}

// Tier is a named, ordered collection of annotations of one kind.
type Tier struct {
	ID             string
	LinguisticType string
	ParentRef      string
	Participant    string
	Annotator      string
	LangRef        string
	DefaultLocale  string
	Kind           TierKind
	Annotations    []*Annotation
}

// LinguisticType declares a tier type shared by one or more tiers.
type LinguisticType struct {
	ID                string
	TimeAlignable     bool
	Constraints       string
	GraphicReferences bool
}

// Constraint is one of the stereotyped tier constraints ELAN declares.
type Constraint struct {
	Stereotype  string
	Description string
}

// Language is a language declaration referenced by tiers via LANG_REF.
type Language struct {
	ID    string
	Def   string
	Label string
}

// Locale is a locale declaration carried for round-trip fidelity.
type Locale struct {
	LanguageCode string
	CountryCode  string
	Variant      string
}

// Property is a free-form header property (URN, lastUsedAnnotationId, ...).
type Property struct {
	Name  string
	Value string
}

// MediaDescriptor points at a media file associated with the document.
type MediaDescriptor struct {
	MediaURL         string
	RelativeMediaURL string
	MimeType         string
	TimeOrigin       string
	ExtractedFrom    string
}

// Header holds document-level metadata.
type Header struct {
	MediaFile        string
	TimeUnits        string
	MediaDescriptors []MediaDescriptor
	Properties       []Property
}

// Document is the full annotation store for one transcript.
type Document struct {
	Author  string
	Date    string
	Format  string
	Version string

	Header          Header
	Timeslots       []Timeslot
	Tiers           []*Tier
	LinguisticTypes []LinguisticType
	Constraints     []Constraint
	Languages       []Language
	Locales         []Locale

	slotValues map[TimeslotID]Timeslot
}

// Tier returns the tier with the given ID.
func (d *Document) Tier(id string) (*Tier, bool) {
	for _, tier := range d.Tiers {
		if tier.ID == id {
			return tier, true
		}
	}
	return nil, false
}

// TierByType returns the ID of the first tier declared with the given
// linguistic type.
func (d *Document) TierByType(linguisticType string) (string, bool) {
	for _, tier := range d.Tiers {
		if tier.LinguisticType == linguisticType {
			return tier.ID, true
		}
	}
	return "", false
}

// SlotValue resolves a timeslot ID to its millisecond offset.
func (d *Document) SlotValue(id TimeslotID) (int64, bool) {
	slot, ok := d.slotIndex()[id]
	if !ok || !slot.Defined {
		return 0, false
	}
	return slot.ValueMS, true
}

func (d *Document) slotIndex() map[TimeslotID]Timeslot {
	if d.slotValues == nil {
		d.slotValues = make(map[TimeslotID]Timeslot, len(d.Timeslots))
		for _, slot := range d.Timeslots {
			d.slotValues[slot.ID] = slot
		}
	}
	return d.slotValues
}

// Validate checks the document's referential integrity: unique tier and
// timeslot IDs, resolvable slot references on aligned tiers, and resolvable
// parent tiers and parent annotations on referential tiers.
func (d *Document) Validate() error {
	slotSeen := make(map[TimeslotID]struct{}, len(d.Timeslots))
	for _, slot := range d.Timeslots {
		if _, dup := slotSeen[slot.ID]; dup {
			return services.Wrap(services.ErrValidation, "elan", "validate",
				fmt.Sprintf("duplicate timeslot %s", slot.ID), nil)
		}
		slotSeen[slot.ID] = struct{}{}
	}

	tierSeen := make(map[string]struct{}, len(d.Tiers))
	for _, tier := range d.Tiers {
		if _, dup := tierSeen[tier.ID]; dup {
			return services.Wrap(services.ErrValidation, "elan", "validate",
				fmt.Sprintf("duplicate tier %q", tier.ID), nil)
		}
		tierSeen[tier.ID] = struct{}{}

		switch tier.Kind {
		case TierAligned:
			for _, ann := range tier.Annotations {
				if _, ok := d.SlotValue(ann.StartSlot); !ok {
					return services.Wrap(services.ErrValidation, "elan", "validate",
						fmt.Sprintf("tier %q annotation %s: unresolved start slot %s", tier.ID, ann.ID, ann.StartSlot), nil)
				}
				if _, ok := d.SlotValue(ann.EndSlot); !ok {
					return services.Wrap(services.ErrValidation, "elan", "validate",
						fmt.Sprintf("tier %q annotation %s: unresolved end slot %s", tier.ID, ann.ID, ann.EndSlot), nil)
				}
			}
		case TierReferential:
			parent, ok := d.Tier(tier.ParentRef)
			if !ok {
				return services.Wrap(services.ErrValidation, "elan", "validate",
					fmt.Sprintf("tier %q: parent tier %q not found", tier.ID, tier.ParentRef), nil)
			}
			parentAnns := make(map[AnnotationID]struct{}, len(parent.Annotations))
			for _, ann := range parent.Annotations {
				parentAnns[ann.ID] = struct{}{}
			}
			for _, ann := range tier.Annotations {
				if _, ok := parentAnns[ann.Ref]; !ok {
					return services.Wrap(services.ErrValidation, "elan", "validate",
						fmt.Sprintf("tier %q annotation %s: parent annotation %s not in %q", tier.ID, ann.ID, ann.Ref, tier.ParentRef), nil)
				}
			}
		}
	}
	return nil
}

// invalidateSlotIndex drops the cached slot lookup; callers that mutate
// d.Timeslots directly must invoke it.
func (d *Document) invalidateSlotIndex() {
	d.slotValues = nil
}
