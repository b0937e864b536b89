package keytrans

// Default returns the built-in key-binding table the core ships when no
// key-bindings file overrides it. It covers the arrow/navigation cluster in both
// normal and application-cursor-keys mode, the scroll commands, and a
// handful of function keys — the entries a real Konsole default.keytab
// carries for every terminal regardless of profile.
func Default() *Translator {
	t := New()

	arrow := func(key, normal, app string) {
		t.Add(Entry{Key: key, StateMask: StateAppCursorKeys, StateMatch: StateAppCursorKeys,
			Result: Result{Bytes: []byte(app)}})
		t.Add(Entry{Key: key, Result: Result{Bytes: []byte(normal)}})
	}
	arrow("Up", "\x1b[A", "\x1bOA")
	arrow("Down", "\x1b[B", "\x1bOB")
	arrow("Right", "\x1b[C", "\x1bOC")
	arrow("Left", "\x1b[D", "\x1bOD")

	t.Add(Entry{Key: "Home", Result: Result{Bytes: []byte("\x1b[H")}})
	t.Add(Entry{Key: "End", Result: Result{Bytes: []byte("\x1b[F")}})
	t.Add(Entry{Key: "Insert", Result: Result{Bytes: []byte("\x1b[2~")}})
	t.Add(Entry{Key: "Delete", Result: Result{Bytes: []byte("\x1b[3~")}})
	t.Add(Entry{Key: "PageUp", ModMask: ModShift, ModMatch: ModShift,
		Result: Result{Command: CommandScrollPageUp}})
	t.Add(Entry{Key: "PageUp", Result: Result{Bytes: []byte("\x1b[5~")}})
	t.Add(Entry{Key: "PageDown", ModMask: ModShift, ModMatch: ModShift,
		Result: Result{Command: CommandScrollLineDown}})
	t.Add(Entry{Key: "PageDown", Result: Result{Bytes: []byte("\x1b[6~")}})
	t.Add(Entry{Key: "Home", ModMask: ModCtrl, ModMatch: ModCtrl,
		Result: Result{Command: CommandScrollToTop}})
	t.Add(Entry{Key: "End", ModMask: ModCtrl, ModMatch: ModCtrl,
		Result: Result{Command: CommandScrollToBottom}})
	t.Add(Entry{Key: "ScrollLock", Result: Result{Command: CommandToggleScrollLock}})
	t.Add(Entry{Key: "Backspace", Result: Result{Bytes: []byte{0x7f}}})
	t.Add(Entry{Key: "Backspace", ModMask: ModCtrl, ModMatch: ModCtrl,
		Result: Result{Command: CommandEraseCharacter}})
	t.Add(Entry{Key: "Tab", Result: Result{Bytes: []byte{0x09}}})
	t.Add(Entry{Key: "Return", Result: Result{Bytes: []byte{0x0d}}})
	t.Add(Entry{Key: "Escape", Result: Result{Bytes: []byte{0x1b}}})

	for i, final := range []string{"P", "Q", "R", "S"} {
		t.Add(Entry{Key: "F" + itoa(i+1), StateMask: StateAppCursorKeys, StateMatch: StateAppCursorKeys,
			Result: Result{Bytes: []byte("\x1bO" + final)}})
		t.Add(Entry{Key: "F" + itoa(i+1), Result: Result{Bytes: []byte("\x1b[" + final)}})
	}

	return t
}

func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}
