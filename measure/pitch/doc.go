// Package pitch estimates the fundamental frequency of monophonic audio
// frames using time-domain autocorrelation.
//
// The estimator works on one frame at a time and keeps no history:
//
//   - Frames whose RMS falls below the silence gate are reported unpitched.
//   - Frame edges are trimmed at the first low-amplitude sample from either
//     end, discarding attack transients before correlating.
//   - The trimmed block is autocorrelated at every positive lag; the first
//     peak past the zero-lag falloff selects the period.
//
// The correlation stage costs O(n²) in the trimmed length, so callers with
// real-time deadlines should bound their frame size. 2048 samples at
// 44.1 kHz is the reference setup and completes comfortably within one
// frame interval.
//
// # Usage
//
// Wrap captured samples in a frame and run one pass:
//
//	f, _ := frame.New(samples, 44100)
//	res := pitch.Estimate(f, pitch.Config{})
//	if res.Pitched {
//	    fmt.Printf("%.1f Hz (lag %d)\n", res.Frequency, res.Lag)
//	}
package pitch
