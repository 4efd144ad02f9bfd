package governance

// ThresholdSnapshotEntry is the stable form of one threshold-table row.
type ThresholdSnapshotEntry struct {
	Governance uint32    `json:"governance"`
	Permission uint32    `json:"permission"`
	Threshold  Threshold `json:"threshold"`
}

// Snapshot exports the threshold table.
func (a *Adapter) Snapshot() []ThresholdSnapshotEntry {
	out := make([]ThresholdSnapshotEntry, 0, len(a.thresholds))
	for key, t := range a.thresholds {
		out = append(out, ThresholdSnapshotEntry{
			Governance: key.governance,
			Permission: key.permission,
			Threshold:  t,
		})
	}
	return out
}

// Restore replaces the threshold table with snapshot contents.
func (a *Adapter) Restore(entries []ThresholdSnapshotEntry) {
	a.thresholds = make(map[thresholdKey]Threshold, len(entries))
	for _, entry := range entries {
		a.thresholds[thresholdKey{governance: entry.Governance, permission: entry.Permission}] = entry.Threshold
	}
}
