package moderation

import "errors"

// Domain-specific errors for the Moderation bounded context.
var (
	// ErrUserNotBanned indicates a ban-status query for a principal with no active ban.
	ErrUserNotBanned = errors.New("user is not banned")
	// ErrCannotBanAdmin indicates an attempt to ban an admin.
	ErrCannotBanAdmin = errors.New("admins cannot be banned")
	// ErrCannotBanController indicates an attempt to ban the runtime controller.
	ErrCannotBanController = errors.New("the runtime controller cannot be banned")

	// ErrReasonRequired indicates a ban without a reason.
	ErrReasonRequired = errors.New("ban reason is required")
	// ErrReasonTooLong indicates the reason exceeds the maximum length.
	ErrReasonTooLong = errors.New("reason exceeds 500 characters")
	// ErrZeroDuration indicates an explicit ban duration of zero hours.
	ErrZeroDuration = errors.New("ban duration must be at least one hour")

	// ErrNoTiers indicates a settings update with an empty tier list.
	ErrNoTiers = errors.New("ban settings require at least one duration tier")
	// ErrMinHoursZero indicates a settings update with a zero minimum duration.
	ErrMinHoursZero = errors.New("minimum ban duration must be at least one hour")
	// ErrTierOffenceOrder indicates tiers whose offence counts are not strictly increasing.
	ErrTierOffenceOrder = errors.New("tier offence counts must be strictly increasing")
	// ErrTierDurationOrder indicates tiers whose durations decrease.
	ErrTierDurationOrder = errors.New("tier durations must be non-decreasing")
)
