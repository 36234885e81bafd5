// Package protocol joins UBX framing and the message registry into byte
// stream decoders and encoders.
//
// Ownership boundary:
// - frame: sync, length and checksum handling
// - field: primitive wire encodings
// - schema: message layouts and the (class, id) registry
// - ubx: the concrete message set
//
// A Stream is fed bytes as they arrive; a Decoder pulls them from an
// io.Reader. Both hand out schema.Packet values that never alias the input.
package protocol
