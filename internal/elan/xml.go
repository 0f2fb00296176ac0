package elan

import (
	"encoding/xml"
	"fmt"
	"os"

	"tierkit/internal/services"
)

const (
	xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"
	eafSchema    = "http://www.mpi.nl/tools/elan/EAFv3.0.xsd"
)

// Wire representation of an EAF 3.0 document. Kept separate from the domain
// model so identifier bookkeeping never leaks into emission concerns.

type xmlDocument struct {
	XMLName   xml.Name  `xml:"ANNOTATION_DOCUMENT"`
	Author    string    `xml:"AUTHOR,attr"`
	Date      string    `xml:"DATE,attr"`
	Format    string    `xml:"FORMAT,attr"`
	Version   string    `xml:"VERSION,attr"`
	XMLNSXSI  string    `xml:"xmlns:xsi,attr"`
	SchemaLoc string    `xml:"xsi:noNamespaceSchemaLocation,attr"`
	Header    xmlHeader `xml:"HEADER"`

	TimeOrder       xmlTimeOrder        `xml:"TIME_ORDER"`
	Tiers           []xmlTier           `xml:"TIER"`
	LinguisticTypes []xmlLinguisticType `xml:"LINGUISTIC_TYPE"`
	Locales         []xmlLocale         `xml:"LOCALE"`
	Languages       []xmlLanguage       `xml:"LANGUAGE"`
	Constraints     []xmlConstraint     `xml:"CONSTRAINT"`
}

type xmlHeader struct {
	MediaFile        string               `xml:"MEDIA_FILE,attr"`
	TimeUnits        string               `xml:"TIME_UNITS,attr"`
	MediaDescriptors []xmlMediaDescriptor `xml:"MEDIA_DESCRIPTOR"`
	Properties       []xmlProperty        `xml:"PROPERTY"`
}

type xmlMediaDescriptor struct {
	MediaURL         string `xml:"MEDIA_URL,attr"`
	RelativeMediaURL string `xml:"RELATIVE_MEDIA_URL,attr,omitempty"`
	MimeType         string `xml:"MIME_TYPE,attr"`
	TimeOrigin       string `xml:"TIME_ORIGIN,attr,omitempty"`
	ExtractedFrom    string `xml:"EXTRACTED_FROM,attr,omitempty"`
}

type xmlProperty struct {
	Name  string `xml:"NAME,attr"`
	Value string `xml:",chardata"`
}

type xmlTimeOrder struct {
	Slots []xmlTimeslot `xml:"TIME_SLOT"`
}

type xmlTimeslot struct {
	ID    string `xml:"TIME_SLOT_ID,attr"`
	Value *int64 `xml:"TIME_VALUE,attr,omitempty"`
}

type xmlTier struct {
	ID             string          `xml:"TIER_ID,attr"`
	LinguisticType string          `xml:"LINGUISTIC_TYPE_REF,attr"`
	ParentRef      string          `xml:"PARENT_REF,attr,omitempty"`
	Participant    string          `xml:"PARTICIPANT,attr,omitempty"`
	Annotator      string          `xml:"ANNOTATOR,attr,omitempty"`
	DefaultLocale  string          `xml:"DEFAULT_LOCALE,attr,omitempty"`
	LangRef        string          `xml:"LANG_REF,attr,omitempty"`
	Annotations    []xmlAnnotation `xml:"ANNOTATION"`
}

type xmlAnnotation struct {
	Alignable *xmlAlignableAnnotation `xml:"ALIGNABLE_ANNOTATION"`
	Ref       *xmlRefAnnotation       `xml:"REF_ANNOTATION"`
}

type xmlAlignableAnnotation struct {
	ID       string   `xml:"ANNOTATION_ID,attr"`
	SlotRef1 string   `xml:"TIME_SLOT_REF1,attr"`
	SlotRef2 string   `xml:"TIME_SLOT_REF2,attr"`
	Value    xmlValue `xml:"ANNOTATION_VALUE"`
}

type xmlRefAnnotation struct {
	ID       string   `xml:"ANNOTATION_ID,attr"`
	Ref      string   `xml:"ANNOTATION_REF,attr"`
	Previous string   `xml:"PREVIOUS_ANNOTATION,attr,omitempty"`
	Value    xmlValue `xml:"ANNOTATION_VALUE"`
}

type xmlValue struct {
	Text string `xml:",chardata"`
}

type xmlLinguisticType struct {
	ID                string `xml:"LINGUISTIC_TYPE_ID,attr"`
	TimeAlignable     bool   `xml:"TIME_ALIGNABLE,attr"`
	Constraints       string `xml:"CONSTRAINTS,attr,omitempty"`
	GraphicReferences bool   `xml:"GRAPHIC_REFERENCES,attr"`
}

type xmlLocale struct {
	LanguageCode string `xml:"LANGUAGE_CODE,attr"`
	CountryCode  string `xml:"COUNTRY_CODE,attr,omitempty"`
	Variant      string `xml:"VARIANT,attr,omitempty"`
}

type xmlLanguage struct {
	ID    string `xml:"LANG_ID,attr"`
	Def   string `xml:"LANG_DEF,attr,omitempty"`
	Label string `xml:"LANG_LABEL,attr,omitempty"`
}

type xmlConstraint struct {
	Stereotype  string `xml:"STEREOTYPE,attr"`
	Description string `xml:"DESCRIPTION,attr,omitempty"`
}

// Load reads and validates the EAF document at path.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "elan", "load", path, err)
	}
	doc, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes an EAF document from its XML bytes.
func Parse(raw []byte) (*Document, error) {
	var wire xmlDocument
	if err := xml.Unmarshal(raw, &wire); err != nil {
		return nil, services.Wrap(services.ErrValidation, "elan", "parse", "malformed XML", err)
	}

	doc := &Document{
		Author:  wire.Author,
		Date:    wire.Date,
		Format:  wire.Format,
		Version: wire.Version,
		Header: Header{
			MediaFile: wire.Header.MediaFile,
			TimeUnits: wire.Header.TimeUnits,
		},
	}
	for _, md := range wire.Header.MediaDescriptors {
		doc.Header.MediaDescriptors = append(doc.Header.MediaDescriptors, MediaDescriptor(md))
	}
	for _, prop := range wire.Header.Properties {
		doc.Header.Properties = append(doc.Header.Properties, Property{Name: prop.Name, Value: prop.Value})
	}
	for _, slot := range wire.TimeOrder.Slots {
		converted := Timeslot{ID: TimeslotID(slot.ID)}
		if slot.Value != nil {
			converted.ValueMS = *slot.Value
			converted.Defined = true
		}
		doc.Timeslots = append(doc.Timeslots, converted)
	}

	alignableTypes := make(map[string]bool, len(wire.LinguisticTypes))
	for _, lt := range wire.LinguisticTypes {
		doc.LinguisticTypes = append(doc.LinguisticTypes, LinguisticType(lt))
		alignableTypes[lt.ID] = lt.TimeAlignable
	}

	for _, wireTier := range wire.Tiers {
		tier := &Tier{
			ID:             wireTier.ID,
			LinguisticType: wireTier.LinguisticType,
			ParentRef:      wireTier.ParentRef,
			Participant:    wireTier.Participant,
			Annotator:      wireTier.Annotator,
			DefaultLocale:  wireTier.DefaultLocale,
			LangRef:        wireTier.LangRef,
			Kind:           tierKindOf(wireTier, alignableTypes),
		}
		for _, wireAnn := range wireTier.Annotations {
			ann, err := convertAnnotation(wireTier.ID, wireAnn, tier.Kind)
			if err != nil {
				return nil, err
			}
			tier.Annotations = append(tier.Annotations, ann)
		}
		doc.Tiers = append(doc.Tiers, tier)
	}

	for _, locale := range wire.Locales {
		doc.Locales = append(doc.Locales, Locale(locale))
	}
	for _, lang := range wire.Languages {
		doc.Languages = append(doc.Languages, Language(lang))
	}
	for _, constraint := range wire.Constraints {
		doc.Constraints = append(doc.Constraints, Constraint(constraint))
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// tierKindOf decides a tier's kind once, at parse time. Annotations are the
// authoritative signal; an empty tier falls back to its linguistic type's
// TIME_ALIGNABLE declaration.
func tierKindOf(tier xmlTier, alignableTypes map[string]bool) TierKind {
	for _, ann := range tier.Annotations {
		if ann.Ref != nil {
			return TierReferential
		}
		if ann.Alignable != nil {
			return TierAligned
		}
	}
	if alignable, declared := alignableTypes[tier.LinguisticType]; declared && !alignable && tier.ParentRef != "" {
		return TierReferential
	}
	return TierAligned
}

func convertAnnotation(tierID string, wire xmlAnnotation, kind TierKind) (*Annotation, error) {
	switch {
	case wire.Alignable != nil:
		if kind != TierAligned {
			return nil, services.Wrap(services.ErrValidation, "elan", "parse",
				fmt.Sprintf("tier %q mixes alignable and reference annotations", tierID), nil)
		}
		return &Annotation{
			ID:        AnnotationID(wire.Alignable.ID),
			Value:     wire.Alignable.Value.Text,
			StartSlot: TimeslotID(wire.Alignable.SlotRef1),
			EndSlot:   TimeslotID(wire.Alignable.SlotRef2),
		}, nil
	case wire.Ref != nil:
		if kind != TierReferential {
			return nil, services.Wrap(services.ErrValidation, "elan", "parse",
				fmt.Sprintf("tier %q mixes alignable and reference annotations", tierID), nil)
		}
		return &Annotation{
			ID:       AnnotationID(wire.Ref.ID),
			Value:    wire.Ref.Value.Text,
			Ref:      AnnotationID(wire.Ref.Ref),
			Previous: AnnotationID(wire.Ref.Previous),
		}, nil
	default:
		return nil, services.Wrap(services.ErrValidation, "elan", "parse",
			fmt.Sprintf("tier %q: annotation with no body", tierID), nil)
	}
}

// Save writes the document as EAF XML to path.
func (d *Document) Save(path string) error {
	raw, err := d.MarshalEAF()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// MarshalEAF serializes the document as EAF 3.0 XML.
func (d *Document) MarshalEAF() ([]byte, error) {
	wire := xmlDocument{
		Author:    d.Author,
		Date:      d.Date,
		Format:    d.Format,
		Version:   d.Version,
		XMLNSXSI:  xsiNamespace,
		SchemaLoc: eafSchema,
		Header: xmlHeader{
			MediaFile: d.Header.MediaFile,
			TimeUnits: d.Header.TimeUnits,
		},
	}
	for _, md := range d.Header.MediaDescriptors {
		wire.Header.MediaDescriptors = append(wire.Header.MediaDescriptors, xmlMediaDescriptor(md))
	}
	for _, prop := range d.Header.Properties {
		wire.Header.Properties = append(wire.Header.Properties, xmlProperty{Name: prop.Name, Value: prop.Value})
	}
	for _, slot := range d.Timeslots {
		converted := xmlTimeslot{ID: string(slot.ID)}
		if slot.Defined {
			value := slot.ValueMS
			converted.Value = &value
		}
		wire.TimeOrder.Slots = append(wire.TimeOrder.Slots, converted)
	}
	for _, tier := range d.Tiers {
		wireTier := xmlTier{
			ID:             tier.ID,
			LinguisticType: tier.LinguisticType,
			ParentRef:      tier.ParentRef,
			Participant:    tier.Participant,
			Annotator:      tier.Annotator,
			DefaultLocale:  tier.DefaultLocale,
			LangRef:        tier.LangRef,
		}
		for _, ann := range tier.Annotations {
			if tier.Kind == TierAligned {
				wireTier.Annotations = append(wireTier.Annotations, xmlAnnotation{
					Alignable: &xmlAlignableAnnotation{
						ID:       string(ann.ID),
						SlotRef1: string(ann.StartSlot),
						SlotRef2: string(ann.EndSlot),
						Value:    xmlValue{Text: ann.Value},
					},
				})
			} else {
				wireTier.Annotations = append(wireTier.Annotations, xmlAnnotation{
					Ref: &xmlRefAnnotation{
						ID:       string(ann.ID),
						Ref:      string(ann.Ref),
						Previous: string(ann.Previous),
						Value:    xmlValue{Text: ann.Value},
					},
				})
			}
		}
		wire.Tiers = append(wire.Tiers, wireTier)
	}
	for _, lt := range d.LinguisticTypes {
		wire.LinguisticTypes = append(wire.LinguisticTypes, xmlLinguisticType(lt))
	}
	for _, locale := range d.Locales {
		wire.Locales = append(wire.Locales, xmlLocale(locale))
	}
	for _, lang := range d.Languages {
		wire.Languages = append(wire.Languages, xmlLanguage(lang))
	}
	for _, constraint := range d.Constraints {
		wire.Constraints = append(wire.Constraints, xmlConstraint(constraint))
	}

	body, err := xml.MarshalIndent(wire, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal eaf: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}
