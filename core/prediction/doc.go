// Package prediction answers "how much CO2 will this trip emit" from a
// trained regressor and the persisted standardization statistics. It also
// looks up comparable trips in the corpus and drives the interactive
// prompt used by the CLI.
package prediction
