package naming

// RecordSnapshotEntry is the stable form of one record-table row.
type RecordSnapshotEntry struct {
	Index  uint32     `json:"index"`
	Record NameRecord `json:"record"`
}

// IndexSnapshotEntry is the stable form of one name-index row.
type IndexSnapshotEntry struct {
	Name  string `json:"name"`
	Index uint32 `json:"index"`
}

// BlacklistSnapshotEntry is the stable form of one blacklist row.
type BlacklistSnapshotEntry struct {
	Word  string         `json:"word"`
	Entry BlacklistEntry `json:"entry"`
}

// Snapshot exports the record table, the name index, the blacklist and the
// settings.
func (r *Registry) Snapshot() (records []RecordSnapshotEntry, index []IndexSnapshotEntry, blacklist []BlacklistSnapshotEntry, settings Settings) {
	records = make([]RecordSnapshotEntry, 0, len(r.names))
	for idx, record := range r.names {
		records = append(records, RecordSnapshotEntry{Index: idx, Record: record})
	}

	index = make([]IndexSnapshotEntry, 0, len(r.byName))
	for name, idx := range r.byName {
		index = append(index, IndexSnapshotEntry{Name: name, Index: idx})
	}

	blacklist = make([]BlacklistSnapshotEntry, 0, len(r.blacklist))
	for word, entry := range r.blacklist {
		blacklist = append(blacklist, BlacklistSnapshotEntry{Word: word, Entry: entry})
	}

	return records, index, blacklist, r.settings
}

// Restore replaces the registry's state with snapshot contents. Snapshots
// with invalid settings fall back to the defaults.
func (r *Registry) Restore(records []RecordSnapshotEntry, index []IndexSnapshotEntry, blacklist []BlacklistSnapshotEntry, settings Settings) {
	r.names = make(map[uint32]NameRecord, len(records))
	for _, entry := range records {
		r.names[entry.Index] = entry.Record
	}

	r.byName = make(map[string]uint32, len(index))
	for _, entry := range index {
		r.byName[entry.Name] = entry.Index
	}

	r.blacklist = make(map[string]BlacklistEntry, len(blacklist))
	for _, entry := range blacklist {
		r.blacklist[entry.Word] = entry.Entry
	}

	if err := settings.Validate(); err != nil {
		r.settings = DefaultSettings()
	} else {
		r.settings = settings
	}
}
