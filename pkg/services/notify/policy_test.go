package notify

import (
	"testing"

	"github.com/de-tools/spend-watch/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outcomes(pairs ...any) []domain.NotificationOutcome {
	var out []domain.NotificationOutcome
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, domain.NotificationOutcome{Channel: pairs[i].(string), OK: pairs[i+1].(bool)})
	}
	return out
}

func TestSuccessPolicies(t *testing.T) {
	tests := []struct {
		name     string
		policy   SuccessPolicy
		outcomes []domain.NotificationOutcome
		want     bool
	}{
		{"any empty", AnyOK, nil, false},
		{"any one ok", AnyOK, outcomes("discord", false, "n8n", true), true},
		{"any none ok", AnyOK, outcomes("discord", false, "n8n", false), false},
		{"all empty", AllOK, nil, false},
		{"all ok", AllOK, outcomes("discord", true, "n8n", true), true},
		{"all one failed", AllOK, outcomes("discord", true, "n8n", false), false},
		{"required empty", RequiredOK("n8n"), nil, false},
		{"required delivered", RequiredOK("n8n"), outcomes("discord", false, "n8n", true), true},
		{"required failed", RequiredOK("n8n"), outcomes("discord", true, "n8n", false), false},
		{"required not attempted", RequiredOK("gotify"), outcomes("discord", true), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy(tt.outcomes))
		})
	}
}

func TestParsePolicy(t *testing.T) {
	ok := outcomes("discord", true, "n8n", false)

	p, err := ParsePolicy("", nil)
	require.NoError(t, err)
	assert.True(t, p(ok))

	p, err = ParsePolicy("all", nil)
	require.NoError(t, err)
	assert.False(t, p(ok))

	p, err = ParsePolicy("required", []string{"discord"})
	require.NoError(t, err)
	assert.True(t, p(ok))

	_, err = ParsePolicy("required", nil)
	assert.Error(t, err)

	_, err = ParsePolicy("majority", nil)
	assert.Error(t, err)
}
