package outreach

import "time"

// FollowUpStage is one scheduled touch after first contact.
type FollowUpStage struct {
	LeadID       uint      `json:"lead_id"`
	Stage        int       `json:"stage"`
	ScheduledFor time.Time `json:"scheduled_for"`
	MessageType  string    `json:"message_type"`
}

// Preferences mirrors the dealer's auto follow-up toggles.
type Preferences struct {
	AutoFollowupEnabled bool
	Day1                bool
	Day3                bool
	Day7                bool
}

type offset struct {
	days        int
	messageType string
	enabled     func(Preferences) bool
}

var offsets = []offset{
	{days: 1, messageType: FollowUp1, enabled: func(p Preferences) bool { return p.Day1 }},
	{days: 3, messageType: FollowUp2, enabled: func(p Preferences) bool { return p.Day3 }},
	{days: 7, messageType: RequestMoreInfo, enabled: func(p Preferences) bool { return p.Day7 }},
}

// FollowUpSchedule returns the day 1, 3 and 7 stages counted from the
// first contact at from.
func FollowUpSchedule(leadID uint, from time.Time) []FollowUpStage {
	out := make([]FollowUpStage, 0, len(offsets))
	for i, o := range offsets {
		out = append(out, FollowUpStage{
			LeadID:       leadID,
			Stage:        i + 1,
			ScheduledFor: from.AddDate(0, 0, o.days),
			MessageType:  o.messageType,
		})
	}
	return out
}

// NextFollowUp returns the first enabled stage after now, counted from the
// first contact. It returns nil when follow-ups are off or all have passed.
func NextFollowUp(p Preferences, firstContactAt, now time.Time) *time.Time {
	if !p.AutoFollowupEnabled {
		return nil
	}
	for _, o := range offsets {
		if !o.enabled(p) {
			continue
		}
		at := firstContactAt.AddDate(0, 0, o.days)
		if at.After(now) {
			return &at
		}
	}
	return nil
}
