// Package tape implements a per-sample analog reel-to-reel tape
// saturation engine.
//
// The Processor models the record/playback chain of two machines (an
// Ampex ATR-102 mastering deck and a Studer A820 multitrack) with two
// tape formulas each (Quantegy GP9 and EMTEC SM900). The signal path
// splits off the high band that the record bias shields from
// saturation, runs the low band through a Jiles-Atherton hysteresis
// core blended with a level-scaled cubic, recombines, and finishes
// with the machine's playback equalizer, a dispersive phase stage, and
// DC blocking.
//
// Subpackages hold the individual stages: hysteresis (the magnetic
// core), shield (the bias-shielding filter), and eq (the playback
// equalizer).
package tape
