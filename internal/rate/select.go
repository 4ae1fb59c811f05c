package rate

import "strings"

// Priority tiers; lower is preferred.
const (
	TierMailbox  = 0
	TierStandard = 1
	TierEnvelope = 2
)

// Priority returns the preference tier of a service name. Mailbox parcels are
// preferred over everything else, plain envelopes least.
func Priority(service string) int {
	name := strings.ToLower(service)
	switch {
	case strings.Contains(name, "envelop") && !strings.Contains(name, "brievenbuspakket"):
		return TierEnvelope
	case strings.Contains(name, "brievenbuspakket"), strings.Contains(name, "brievenbuspakje"):
		return TierMailbox
	default:
		return TierStandard
	}
}

// Select returns the candidate with the lowest tier, then the lowest price.
// On a full tie the earliest candidate wins. ok is false for an empty list.
func Select(cands []Candidate) (best Candidate, ok bool) {
	bestTier := 0
	for _, c := range cands {
		tier := Priority(c.Service)
		if !ok || tier < bestTier || (tier == bestTier && c.Price.Amount.LessThan(best.Price.Amount)) {
			best, bestTier, ok = c, tier, true
		}
	}
	return best, ok
}
