package notify

import (
	"fmt"

	"github.com/de-tools/spend-watch/pkg/models/domain"
)

// SuccessPolicy decides whether a dispatch as a whole succeeded.
// No policy treats an empty outcome list as a success.
type SuccessPolicy func(outcomes []domain.NotificationOutcome) bool

// AnyOK succeeds when at least one channel delivered.
func AnyOK(outcomes []domain.NotificationOutcome) bool {
	for _, o := range outcomes {
		if o.OK {
			return true
		}
	}
	return false
}

// AllOK succeeds when every attempted channel delivered.
func AllOK(outcomes []domain.NotificationOutcome) bool {
	if len(outcomes) == 0 {
		return false
	}
	for _, o := range outcomes {
		if !o.OK {
			return false
		}
	}
	return true
}

// RequiredOK succeeds when each named channel was attempted and delivered.
// Outcomes of channels outside the set are ignored.
func RequiredOK(names ...string) SuccessPolicy {
	return func(outcomes []domain.NotificationOutcome) bool {
		if len(outcomes) == 0 {
			return false
		}
		ok := make(map[string]bool, len(outcomes))
		for _, o := range outcomes {
			ok[o.Channel] = o.OK
		}
		for _, name := range names {
			if !ok[name] {
				return false
			}
		}
		return true
	}
}

// ParsePolicy maps a configured policy name to a SuccessPolicy.
func ParsePolicy(name string, required []string) (SuccessPolicy, error) {
	switch name {
	case "", "any":
		return AnyOK, nil
	case "all":
		return AllOK, nil
	case "required":
		if len(required) == 0 {
			return nil, fmt.Errorf("policy %q needs at least one channel name", name)
		}
		return RequiredOK(required...), nil
	default:
		return nil, fmt.Errorf("unknown dispatch policy %q", name)
	}
}
