package elan

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"tierkit/internal/services"
)

const urnPrefix = "urn:nl-mpi-tools-elan-eaf:"

// allocator hands out sequential timeslot and annotation identifiers. It
// knows nothing about XML; emission happens later, from the finished
// document.
type allocator struct {
	nextSlot int
	nextAnn  int
}

func (a *allocator) slot() TimeslotID {
	a.nextSlot++
	return TimeslotID(fmt.Sprintf("ts%d", a.nextSlot))
}

func (a *allocator) annotation() AnnotationID {
	a.nextAnn++
	return AnnotationID(fmt.Sprintf("a%d", a.nextAnn))
}

// Builder assembles a new Document from scratch. Tier structure is declared
// first, annotations are appended in playback order, and Document() seals the
// result. Identifiers are allocated eagerly so callers can link referential
// annotations to aligned ones as they go.
type Builder struct {
	doc   *Document
	alloc allocator
}

// NewBuilder returns a builder primed with the standard document envelope:
// format/version 3.0, millisecond time units, a fresh URN header property,
// and the four stereotyped tier constraints.
func NewBuilder(author string) *Builder {
	doc := &Document{
		Author:  author,
		Date:    time.Now().Format(time.RFC3339),
		Format:  "3.0",
		Version: "3.0",
		Header: Header{
			TimeUnits: "milliseconds",
			Properties: []Property{
				{Name: "URN", Value: urnPrefix + uuid.NewString()},
			},
		},
		Constraints: []Constraint{
			{Stereotype: "Time_Subdivision", Description: "Time subdivision of parent annotation's time interval, no time gaps allowed within this interval"},
			{Stereotype: "Symbolic_Subdivision", Description: "Symbolic subdivision of a parent annotation. Annotations refering to the same parent are ordered"},
			{Stereotype: "Symbolic_Association", Description: "1-1 association with a parent annotation"},
			{Stereotype: "Included_In", Description: "Time alignable annotations within the parent annotation's time interval, gaps are allowed"},
		},
	}
	return &Builder{doc: doc}
}

// AddMediaDescriptor registers a media file in the document header.
func (b *Builder) AddMediaDescriptor(md MediaDescriptor) {
	b.doc.Header.MediaDescriptors = append(b.doc.Header.MediaDescriptors, md)
}

// AddLinguisticType declares a tier type.
func (b *Builder) AddLinguisticType(lt LinguisticType) {
	b.doc.LinguisticTypes = append(b.doc.LinguisticTypes, lt)
}

// AddLanguage validates a language tag, declares it, and returns the
// language ID tiers should reference. The declared ID stays the tag as
// given (ELAN files conventionally carry ISO 639-3 codes); the tag is only
// parsed for validation and for an English display label, which falls back
// to the bare tag when no name is known.
func (b *Builder) AddLanguage(tag string) (string, error) {
	parsed, err := language.Parse(tag)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "elan", "add language",
			fmt.Sprintf("unrecognized language tag %q", tag), err)
	}
	id := tag
	label := id
	if name := display.English.Languages().Name(parsed); name != "" {
		label = fmt.Sprintf("%s (%s)", name, id)
	}
	for _, existing := range b.doc.Languages {
		if existing.ID == id {
			return id, nil
		}
	}
	b.doc.Languages = append(b.doc.Languages, Language{ID: id, Label: label})
	return id, nil
}

// AddAlignedTier declares a tier that owns its annotations' time boundaries.
func (b *Builder) AddAlignedTier(id, linguisticType, participant, annotator, langRef string) *Tier {
	tier := &Tier{
		ID:             id,
		LinguisticType: linguisticType,
		Participant:    participant,
		Annotator:      annotator,
		LangRef:        langRef,
		Kind:           TierAligned,
	}
	b.doc.Tiers = append(b.doc.Tiers, tier)
	return tier
}

// AddReferentialTier declares a tier whose annotations borrow spans from
// parent annotations on parentID.
func (b *Builder) AddReferentialTier(id, linguisticType, parentID, annotator string) *Tier {
	tier := &Tier{
		ID:             id,
		LinguisticType: linguisticType,
		ParentRef:      parentID,
		Annotator:      annotator,
		Kind:           TierReferential,
	}
	b.doc.Tiers = append(b.doc.Tiers, tier)
	return tier
}

// AddAligned allocates two timeslots for the given span, binds a new aligned
// annotation to them on the tier, and returns the annotation's ID so
// referential children can link to it.
func (b *Builder) AddAligned(tier *Tier, startMS, endMS int64, value string) AnnotationID {
	start := b.alloc.slot()
	end := b.alloc.slot()
	b.doc.Timeslots = append(b.doc.Timeslots,
		Timeslot{ID: start, ValueMS: startMS, Defined: true},
		Timeslot{ID: end, ValueMS: endMS, Defined: true},
	)
	b.doc.invalidateSlotIndex()

	ann := &Annotation{
		ID:        b.alloc.annotation(),
		Value:     value,
		StartSlot: start,
		EndSlot:   end,
	}
	tier.Annotations = append(tier.Annotations, ann)
	return ann.ID
}

// AddRef binds a new referential annotation to a parent annotation. Only an
// annotation ID is consumed; referential annotations carry no timeslots.
func (b *Builder) AddRef(tier *Tier, parent AnnotationID, value string) AnnotationID {
	ann := &Annotation{
		ID:    b.alloc.annotation(),
		Value: value,
		Ref:   parent,
	}
	tier.Annotations = append(tier.Annotations, ann)
	return ann.ID
}

// Document seals the build: records the last used annotation ID the way ELAN
// does, validates referential integrity, and returns the document. No partial
// document escapes a failed build.
func (b *Builder) Document() (*Document, error) {
	if b.alloc.nextAnn > 0 {
		b.doc.Header.Properties = append(b.doc.Header.Properties,
			Property{Name: "lastUsedAnnotationId", Value: strconv.Itoa(b.alloc.nextAnn)})
	}
	if err := b.doc.Validate(); err != nil {
		return nil, err
	}
	return b.doc, nil
}
