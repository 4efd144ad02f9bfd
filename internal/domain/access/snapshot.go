package access

// AdminSnapshotEntry is the stable form of one admin-table row.
type AdminSnapshotEntry struct {
	Index uint32     `json:"index"`
	Grant AdminGrant `json:"grant"`
}

// GrantSnapshotEntry is the stable form of one permission grant.
type GrantSnapshotEntry struct {
	Principal  uint32 `json:"principal"`
	Permission uint32 `json:"permission"`
	Grant      Grant  `json:"grant"`
}

// Snapshot exports the admin table and grant tables. Permission types are
// deliberately absent: the host re-registers them on startup.
func (c *Core) Snapshot() (admins []AdminSnapshotEntry, grants []GrantSnapshotEntry) {
	admins = make([]AdminSnapshotEntry, 0, len(c.admins))
	for idx, grant := range c.admins {
		admins = append(admins, AdminSnapshotEntry{Index: idx, Grant: grant})
	}

	grants = make([]GrantSnapshotEntry, 0)
	for principalIdx, table := range c.grants {
		for permissionIdx, grant := range table {
			grants = append(grants, GrantSnapshotEntry{
				Principal:  principalIdx,
				Permission: permissionIdx,
				Grant:      grant,
			})
		}
	}
	return admins, grants
}

// Restore replaces the admin table and grant tables with snapshot contents.
func (c *Core) Restore(admins []AdminSnapshotEntry, grants []GrantSnapshotEntry) {
	c.admins = make(map[uint32]AdminGrant, len(admins))
	for _, entry := range admins {
		c.admins[entry.Index] = entry.Grant
	}

	c.grants = make(map[uint32]map[uint32]Grant)
	for _, entry := range grants {
		table, ok := c.grants[entry.Principal]
		if !ok {
			table = make(map[uint32]Grant)
			c.grants[entry.Principal] = table
		}
		table[entry.Permission] = entry.Grant
	}
}
