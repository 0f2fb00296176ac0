// Package elan models ELAN annotation documents (EAF 3.0) as an in-memory
// annotation store.
//
// A Document owns its timeslot table and every annotation; tiers reference
// timeslots by ID. Each tier carries an explicit kind discriminant, decided
// once when the document is parsed or built: aligned tiers own their
// annotations' time boundaries, while referential tiers borrow the span of a
// parent annotation on another tier and never hold timeslots of their own.
//
// The package separates three concerns that are easy to tangle: the domain
// model and its lookup/mutation operations (document.go, data.go), EAF XML
// reading and writing (xml.go), and construction of new documents with fresh
// identifier allocation (builder.go).
package elan
