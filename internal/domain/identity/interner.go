package identity

// Interner is the content-addressed deduplication index: an injective map
// between opaque byte strings and dense 32-bit indices. Every other
// subsystem keys its tables by interner indices, so a single Interner
// instance is shared by reference across the core.
//
// Allocation is infallible and monotonic: an entry's index never changes
// and indices are never reused. Entries live for the process lifetime.
type Interner struct {
	indexes map[string]uint32
	entries []internEntry
}

type internEntry struct {
	blob string
	// principal marks entries that were interned via a principal-valued
	// input. PrincipalFor only materializes these; everything else (names,
	// permission names, neuron ids, account keys) reads back as absent.
	principal bool
}

// InternEntry is the snapshot form of one interner entry. The position in
// the snapshot slice is the entry's index.
type InternEntry struct {
	Bytes       []byte `json:"bytes"`
	IsPrincipal bool   `json:"is_principal"`
}

// NewInterner creates an empty Interner.
func NewInterner() *Interner {
	return &Interner{indexes: make(map[string]uint32)}
}

// Index returns the index for the given bytes, allocating the next dense
// index on first sight.
func (in *Interner) Index(b []byte) uint32 {
	return in.intern(string(b), false)
}

// IndexPrincipal returns the index for the principal's canonical byte form
// and marks the entry as principal-valued.
func (in *Interner) IndexPrincipal(p Principal) uint32 {
	return in.intern(string(p.Bytes()), true)
}

func (in *Interner) intern(blob string, principal bool) uint32 {
	if idx, ok := in.indexes[blob]; ok {
		if principal && !in.entries[idx].principal {
			in.entries[idx].principal = true
		}
		return idx
	}

	idx := uint32(len(in.entries))
	in.indexes[blob] = idx
	in.entries = append(in.entries, internEntry{blob: blob, principal: principal})
	return idx
}

// Lookup returns the index for the given bytes without allocating.
func (in *Interner) Lookup(b []byte) (uint32, bool) {
	idx, ok := in.indexes[string(b)]
	return idx, ok
}

// LookupPrincipal returns the index for the principal without allocating.
func (in *Interner) LookupPrincipal(p Principal) (uint32, bool) {
	return in.Lookup(p.Bytes())
}

// BytesFor returns a copy of the bytes behind the given index.
func (in *Interner) BytesFor(index uint32) ([]byte, bool) {
	if int(index) >= len(in.entries) {
		return nil, false
	}
	return []byte(in.entries[index].blob), true
}

// PrincipalFor materializes the principal behind the given index. The second
// return is false when the index is unknown or was never interned via a
// principal-valued input; callers materializing the ban log must tolerate
// that and skip such entries.
func (in *Interner) PrincipalFor(index uint32) (Principal, bool) {
	if int(index) >= len(in.entries) {
		return Principal{}, false
	}
	entry := in.entries[index]
	if !entry.principal {
		return Principal{}, false
	}
	p, err := PrincipalFromBytes([]byte(entry.blob))
	if err != nil {
		return Principal{}, false
	}
	return p, true
}

// Len returns the number of interned entries.
func (in *Interner) Len() int {
	return len(in.entries)
}

// Snapshot exports all entries in index order.
func (in *Interner) Snapshot() []InternEntry {
	out := make([]InternEntry, len(in.entries))
	for i, e := range in.entries {
		out[i] = InternEntry{Bytes: []byte(e.blob), IsPrincipal: e.principal}
	}
	return out
}

// Restore replaces the interner's contents in place with snapshot entries,
// reinstalled in slice order so every index resolves to the same bytes it
// did when the snapshot was taken. In-place restoration keeps every
// borrowed reference to the shared instance valid.
func (in *Interner) Restore(entries []InternEntry) {
	in.indexes = make(map[string]uint32, len(entries))
	in.entries = in.entries[:0]
	for _, e := range entries {
		in.intern(string(e.Bytes), e.IsPrincipal)
	}
}

// RestoreInterner rebuilds a fresh Interner from a snapshot.
func RestoreInterner(entries []InternEntry) *Interner {
	in := NewInterner()
	in.Restore(entries)
	return in
}
