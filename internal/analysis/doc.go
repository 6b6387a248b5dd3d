// Package analysis summarises a recorded field stream.
//
//   - [Inspect]: decode a stream and collect per-frame energy and peaks
//   - [DominantFrequency]: strongest oscillation in a sampled series
//   - [FFT], [PowerSpectrum]: any-length transforms used by the above
//
// # Example
//
//	report, err := analysis.Inspect(f, 30)
//	hz := analysis.DominantFrequency(report.Energy[1:], report.FrameDt)
package analysis
