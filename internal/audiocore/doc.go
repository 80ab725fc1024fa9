// Package audiocore drives the input-device → plugin-chain → output-device
// data path. It owns the audio backend context, the capture and playback
// devices, the preallocated process-data block handed to plugins, the
// sample-rate converter and the lock-free ring between the two driver
// callbacks.
//
// The two driver callbacks are real-time: nothing on those paths allocates,
// logs or blocks. Every buffer they touch is preallocated at engine
// construction and lives at a stable address for the engine's lifetime.
package audiocore
