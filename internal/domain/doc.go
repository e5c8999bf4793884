// Package domain models the respiration metrics derived from a manually
// logged scuba dive and the contract with the host page that displays it.
//
// # Host Page
//
// The host is the Garmin Connect manual dive entry page. It renders the
// tank-entry modal and the tank summary table asynchronously and owns their
// lifetime; this package only describes how they are read and augmented. The
// element identifiers below are a compatibility contract with that page:
//
//	startingPressure, endingPressure, tankSize, averageDepth  numeric inputs
//	averageDepthSelect                                         "metric" or imperial
//	bottomTime_*-time-hour, bottomTime_*-time-minute           bottom time inputs
//	sacRate                                                    output field
//
// # SAC
//
// Surface Air Consumption is the pressure consumed per minute of bottom time,
// normalized to surface pressure:
//
//	ata = depth/10 + 1   (metres, 10 m per atmosphere)
//	ata = depth/33 + 1   (feet, 33 ft per atmosphere)
//	sac = (start - end) / (minutes * ata)
//
// Tank size is read and validated with the other inputs but does not enter
// the formula. It is only used by RMV.
//
// # RMV
//
// Respiratory Minute Volume is the pressure rate shown in the summary table
// multiplied by the tank size shown in the same row:
//
//	"11.1 L" x "2.50" = 27.75
//
// Cell text is reduced to digits and decimal points before parsing. RMV is
// rendered without a unit because the table mixes metric and imperial rows.
//
// # Blank versus zero
//
// Form values are strings. [ParseField] classifies each one as blank,
// invalid or valid, so a required field left empty is never confused with a
// field holding "0".
package domain
