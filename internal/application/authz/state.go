package authz

import (
	"github.com/kaelum/authcore/internal/domain/access"
	"github.com/kaelum/authcore/internal/domain/governance"
	"github.com/kaelum/authcore/internal/domain/identity"
	"github.com/kaelum/authcore/internal/domain/moderation"
	"github.com/kaelum/authcore/internal/domain/naming"
)

// StateVersion identifies the snapshot layout. Bump on breaking changes to
// the State shape.
const StateVersion = 1

// State is the stable snapshot of the whole core. It is a plain value:
// safe to serialize, compare and hand across an upgrade boundary.
// Permission-type metadata is deliberately absent.
type State struct {
	Version int `json:"version"`

	Dedup []identity.InternEntry `json:"dedup"`

	Admins []access.AdminSnapshotEntry `json:"admins"`
	Grants []access.GrantSnapshotEntry `json:"grants"`

	ActiveBans  []moderation.ActiveSnapshotEntry `json:"active_bans"`
	BanLog      []moderation.LogEntry            `json:"ban_log"`
	BanSettings moderation.Settings              `json:"ban_settings"`

	SnsThresholds []governance.ThresholdSnapshotEntry `json:"sns_thresholds"`

	NameRecords   []naming.RecordSnapshotEntry    `json:"name_records"`
	NameIndex     []naming.IndexSnapshotEntry     `json:"name_index"`
	NameBlacklist []naming.BlacklistSnapshotEntry `json:"name_blacklist"`
	NameSettings  naming.Settings                 `json:"name_settings"`
}
