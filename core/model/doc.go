// Package model holds the commute domain types shared by every stage of the
// prediction pipeline: trip records, the canonical traffic condition with its
// ordinal/textual mapping, and the error taxonomy returned by the pipeline.
package model
