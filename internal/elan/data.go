package elan

import (
	"fmt"

	"tierkit/internal/services"
)

// Interval is a single time span drawn from a tier, in document order.
type Interval struct {
	StartMS int64
	EndMS   int64
	Value   string
}

// AnnotationDatum is one annotation's resolved data: its effective span, its
// value, and (for referential tiers) the parent annotation's value.
type AnnotationDatum struct {
	StartMS  int64
	EndMS    int64
	Value    string
	RefValue string
}

// AnnotationData returns the ordered annotation data for a tier. Aligned
// tiers resolve their own timeslots; referential tiers resolve each
// annotation's effective span through the parent annotation it references.
func (d *Document) AnnotationData(tierID string) ([]AnnotationDatum, error) {
	tier, ok := d.Tier(tierID)
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "elan", "annotation data",
			fmt.Sprintf("tier %q", tierID), nil)
	}

	if tier.Kind == TierAligned {
		data := make([]AnnotationDatum, 0, len(tier.Annotations))
		for _, ann := range tier.Annotations {
			start, end, err := d.alignedSpan(tier, ann)
			if err != nil {
				return nil, err
			}
			data = append(data, AnnotationDatum{StartMS: start, EndMS: end, Value: ann.Value})
		}
		return data, nil
	}

	parents, err := d.parentSpans(tier)
	if err != nil {
		return nil, err
	}
	data := make([]AnnotationDatum, 0, len(tier.Annotations))
	for _, ann := range tier.Annotations {
		parent, ok := parents[ann.Ref]
		if !ok {
			return nil, services.Wrap(services.ErrValidation, "elan", "annotation data",
				fmt.Sprintf("tier %q annotation %s: dangling parent reference %s", tier.ID, ann.ID, ann.Ref), nil)
		}
		data = append(data, AnnotationDatum{
			StartMS:  parent.startMS,
			EndMS:    parent.endMS,
			Value:    ann.Value,
			RefValue: parent.value,
		})
	}
	return data, nil
}

// SetValue locates the unique annotation on the tier whose effective span
// equals (startMS, endMS) and replaces its value in place, preserving its
// identifier and structural links. Referential tiers are searched by parent
// span, since their annotations carry no span of their own. When no
// annotation matches, SetValue is a silent no-op: the redaction pass only
// feeds back spans it read out of this same store.
func (d *Document) SetValue(tierID string, startMS, endMS int64, newValue string) {
	tier, ok := d.Tier(tierID)
	if !ok {
		return
	}

	if tier.Kind == TierAligned {
		for _, ann := range tier.Annotations {
			start, end, err := d.alignedSpan(tier, ann)
			if err != nil {
				continue
			}
			if start == startMS && end == endMS {
				ann.Value = newValue
				return
			}
		}
		return
	}

	parents, err := d.parentSpans(tier)
	if err != nil {
		return
	}
	for _, ann := range tier.Annotations {
		parent, ok := parents[ann.Ref]
		if !ok {
			continue
		}
		if parent.startMS == startMS && parent.endMS == endMS {
			ann.Value = newValue
			return
		}
	}
}

// Intervals returns the tier's annotation spans in document order. Overlaps
// and duplicates are preserved; they compile to separate filter clauses.
func (d *Document) Intervals(tierID string) []Interval {
	data, err := d.AnnotationData(tierID)
	if err != nil {
		return nil
	}
	intervals := make([]Interval, 0, len(data))
	for _, datum := range data {
		intervals = append(intervals, Interval{StartMS: datum.StartMS, EndMS: datum.EndMS, Value: datum.Value})
	}
	return intervals
}

// RefValueAt returns the value of the referential annotation on the tier
// whose parent span contains the given instant.
func (d *Document) RefValueAt(tierID string, atMS int64) (string, bool) {
	data, err := d.AnnotationData(tierID)
	if err != nil {
		return "", false
	}
	for _, datum := range data {
		if datum.StartMS <= atMS && atMS < datum.EndMS {
			return datum.Value, true
		}
	}
	return "", false
}

type parentSpan struct {
	startMS int64
	endMS   int64
	value   string
}

func (d *Document) alignedSpan(tier *Tier, ann *Annotation) (int64, int64, error) {
	start, ok := d.SlotValue(ann.StartSlot)
	if !ok {
		return 0, 0, services.Wrap(services.ErrValidation, "elan", "resolve span",
			fmt.Sprintf("tier %q annotation %s: unresolved start slot %s", tier.ID, ann.ID, ann.StartSlot), nil)
	}
	end, ok := d.SlotValue(ann.EndSlot)
	if !ok {
		return 0, 0, services.Wrap(services.ErrValidation, "elan", "resolve span",
			fmt.Sprintf("tier %q annotation %s: unresolved end slot %s", tier.ID, ann.ID, ann.EndSlot), nil)
	}
	return start, end, nil
}

func (d *Document) parentSpans(tier *Tier) (map[AnnotationID]parentSpan, error) {
	parent, ok := d.Tier(tier.ParentRef)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "elan", "resolve parent",
			fmt.Sprintf("tier %q: parent tier %q not found", tier.ID, tier.ParentRef), nil)
	}
	if parent.Kind != TierAligned {
		return nil, services.Wrap(services.ErrValidation, "elan", "resolve parent",
			fmt.Sprintf("tier %q: parent tier %q is not time-aligned", tier.ID, parent.ID), nil)
	}
	spans := make(map[AnnotationID]parentSpan, len(parent.Annotations))
	for _, ann := range parent.Annotations {
		start, end, err := d.alignedSpan(parent, ann)
		if err != nil {
			return nil, err
		}
		spans[ann.ID] = parentSpan{startMS: start, endMS: end, value: ann.Value}
	}
	return spans, nil
}
