package scanadc

import "errors"

// Errors returned by the sampling engine. All of them propagate to the
// immediate caller of the read or initialize operation; nothing is retried
// internally. Wrapped details are attached where the error arises, so test
// with errors.Is.
var (
	// ErrConversionNotStarted indicates a read was requested while the
	// converter is not running.
	ErrConversionNotStarted = errors.New("scanadc: conversion not started")

	// ErrInvalidChannel indicates a channel number outside [0, MaxChannels).
	ErrInvalidChannel = errors.New("scanadc: invalid channel")

	// ErrRankNotFound indicates the channel is not part of the active scan
	// set, so the sequencer assigned it no rank.
	ErrRankNotFound = errors.New("scanadc: rank not found")

	// ErrInvalidChannelCount indicates the sequencer reports zero or more
	// than MaxChannels active channels.
	ErrInvalidChannelCount = errors.New("scanadc: invalid channel count")

	// ErrIndexOutOfRange indicates a computed capture-buffer offset falls
	// outside the buffer. It signals a configuration mismatch between the
	// averaging window, the active channel count and the buffer size.
	ErrIndexOutOfRange = errors.New("scanadc: buffer index out of range")

	// ErrOutOfRangeSample indicates a converted value outside
	// [0, resolution], which points at a hardware or noise fault.
	ErrOutOfRangeSample = errors.New("scanadc: sample out of range")

	// ErrPeripheralStart indicates the underlying converter start, stop or
	// capture re-arm did not succeed. Continuous capture is then not
	// guaranteed to be running; the next read re-detects the state.
	ErrPeripheralStart = errors.New("scanadc: peripheral start failed")

	// ErrUnsupportedMode indicates a mode combination the engine refuses,
	// such as combined-mode reads without streaming capture.
	ErrUnsupportedMode = errors.New("scanadc: unsupported mode")
)
