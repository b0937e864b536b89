// Package termcore is the terminal-emulation core of a Konsole-like
// graphical terminal emulator: a VT100/VT102/xterm byte-stream decoder, a
// pair of screen buffers (primary and alternate), a pluggable scrollback
// history store, a key translator, and a small refresh scheduler that
// decouples emulation from display. Rendering, widgets, menus, and process
// spawning are external collaborators.
//
// # Architecture
//
//   - [Cell] / [CharacterColor]: the atomic styled code point and its
//     five-variant color value.
//   - [Screen]: a fixed-size grid of cells with cursor, margins, rendition
//     state, selection, and a scrollback attachment.
//   - [HistoryStore]: the append-only scrollback contract; concrete
//     backends live in internal/history (none, bounded ring, unbounded
//     file, block array).
//   - internal/decode: the VT100/VT102/xterm tokenizer and dispatcher that
//     drives a Screen from a byte stream.
//   - internal/keytrans: maps key events back into byte sequences.
//   - internal/refresh: debounces bulk Screen updates into display
//     snapshots.
//   - internal/session: owns a PTY, a Decoder, and a set of displays, and
//     relays bytes both directions.
//
// This package itself only models the Cell/Screen/History layer; the
// Decoder, Session, and key translator live under internal/ because they
// depend on the data model here but are not part of its public surface.
package termcore
