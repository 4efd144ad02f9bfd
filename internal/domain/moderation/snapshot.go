package moderation

// ActiveSnapshotEntry is the stable form of one active-ban row.
type ActiveSnapshotEntry struct {
	Index uint32    `json:"index"`
	Ban   ActiveBan `json:"ban"`
}

// Snapshot exports the active table, the full log and the settings.
func (r *Registry) Snapshot() (active []ActiveSnapshotEntry, log []LogEntry, settings Settings) {
	active = make([]ActiveSnapshotEntry, 0, len(r.active))
	for idx, ban := range r.active {
		active = append(active, ActiveSnapshotEntry{Index: idx, Ban: ban})
	}

	log = make([]LogEntry, len(r.log))
	copy(log, r.log)

	return active, log, r.settings.clone()
}

// Restore replaces the registry's state with snapshot contents. A snapshot
// with invalid settings falls back to the defaults.
func (r *Registry) Restore(active []ActiveSnapshotEntry, log []LogEntry, settings Settings) {
	r.active = make(map[uint32]ActiveBan, len(active))
	for _, entry := range active {
		r.active[entry.Index] = entry.Ban
	}

	r.log = make([]LogEntry, len(log))
	copy(r.log, log)

	if err := settings.Validate(); err != nil {
		r.settings = DefaultSettings()
	} else {
		r.settings = settings.clone()
	}
}
