package mailbox

// ExtractOnly returns the sole message of the given kind, or nil when the
// batch holds none or more than one. Duplicates of a singleton kind mean the
// transmission cannot be trusted, so they are treated the same as absence.
func ExtractOnly(kind Kind, mb *Mailbox) *Message {
	var match *Message
	for i := 0; i != mb.Size(); i++ {
		m := mb.Read(i)
		if m.Kind != kind {
			continue
		}
		if match != nil {
			return nil
		}
		match = &m
	}
	return match
}

// ExtractAll returns every message of the given kind in batch order. The
// pump-state batches are positional: index i of the result is pump i.
func ExtractAll(kind Kind, mb *Mailbox) []Message {
	var matches []Message
	for i := 0; i != mb.Size(); i++ {
		if m := mb.Read(i); m.Kind == kind {
			matches = append(matches, m)
		}
	}
	return matches
}
