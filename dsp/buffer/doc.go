// Package buffer bridges capture-side audio delivery and fixed-size
// analysis frames. Capture devices hand out chunks of whatever length
// the driver prefers; Accumulator reassembles them into frames of the
// analysis block size, and Pool recycles frame-sized blocks so
// steady-state capture stays allocation-free.
package buffer
