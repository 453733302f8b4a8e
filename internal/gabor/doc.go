// Package gabor implements a fixed-point Gabor filter bank engine.
//
// Compute takes a float image, a bank of square integer filters and a set of
// caller-owned working buffers, and produces one normalized response plane
// per filter (two under DualPhase). The pipeline is:
//
//  1. Validate the request and derive an input-space and an output-space box.
//  2. Convert the float image into an integer working buffer, either cropped
//     to the image (Constrained) or padded with a fill value (SweepOff).
//  3. Convolve every filter over the output box, optionally gated by an alpha
//     mask, while gathering the statistic the normalization method needs.
//  4. Turn statistics into gains and write rectified or sign-split float
//     responses, optionally remapped through a lookup table.
//
// # Fixed-point arithmetic
//
// Filter coefficients are integers pre-multiplied by 1<<ScalingShift.
// Responses stay in that scale until post-processing shifts them back to
// pixel units. All sums use 32-bit signed arithmetic; kernels for filter
// sizes 5, 7, 9, 11 and 13 are unrolled but give identical results to the
// generic loop.
//
// # Coordinates
//
// Rect is half-open. In Constrained mode the output box is the region of
// interest with filterDim-1 pixels removed from its right and bottom; in
// SweepOff mode output and input boxes coincide and the working buffer holds
// the image shifted by filterDim/2.
//
// # Concurrency
//
// Compute keeps no shared mutable state. Concurrent calls are safe as long as
// each call gets its own output and working buffers.
package gabor
