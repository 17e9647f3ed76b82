// Package spectral provides frequency-domain measurements used to
// cross-check the time-domain pitch estimator.
//
// PeakFrequency locates the strongest spectral component of a block via
// a windowed FFT with parabolic sub-bin refinement. Probe measures the
// energy at one exact frequency with a single-bin DFT recurrence, which
// is handy for confirming that a detected note, rather than its octave
// neighbor, carries the energy.
//
// Nothing in this package participates in the detection pipeline itself;
// it exists for verification tooling and tests.
package spectral
