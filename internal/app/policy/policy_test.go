package policy

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestPolicies_Decide(t *testing.T) {
	tests := []struct {
		name        string
		policy      Policy
		in          Input
		wantDecided bool
		wantCommand string
	}{
		{
			name:        "hold on seeks to start",
			policy:      &HoldPolicy{},
			in:          Input{Hold: true, ClipIndex: 0, ClipCount: 2},
			wantDecided: true,
			wantCommand: "seek 0 2",
		},
		{
			name:        "hold off passes",
			policy:      &HoldPolicy{},
			in:          Input{Hold: false, Shuffle: true, ClipIndex: 0, ClipCount: 2},
			wantDecided: false,
		},
		{
			name:        "shuffle off passes",
			policy:      &ShufflePolicy{},
			in:          Input{ClipIndex: 1, ClipCount: 5},
			wantDecided: false,
		},
		{
			name:        "shuffle with unknown clip does nothing",
			policy:      &ShufflePolicy{},
			in:          Input{Shuffle: true, ClipIndex: -1, ClipCount: 5},
			wantDecided: true,
			wantCommand: "",
		},
		{
			name:        "advance steps forward",
			policy:      &AdvancePolicy{},
			in:          Input{ClipIndex: -1},
			wantDecided: true,
			wantCommand: "pt_step 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Rand = newRand()

			result := tt.policy.Decide(tt.in)

			assert.Equal(t, tt.wantDecided, result.Decided)
			assert.Equal(t, tt.wantCommand, result.Command)
		})
	}
}

func TestShufflePolicy_StepsRandomly(t *testing.T) {
	p := &ShufflePolicy{}
	in := Input{Shuffle: true, ClipIndex: 2, ClipCount: 6, Rand: newRand()}

	allowed := map[string]bool{}
	for m := 1; m <= 4; m++ {
		allowed["pt_step "+itoa(m)] = true
		allowed["pt_step -"+itoa(m)] = true
	}

	for i := 0; i < 200; i++ {
		result := p.Decide(in)
		require.True(t, result.Decided)
		assert.True(t, allowed[result.Command], "unexpected command %q", result.Command)
	}
}

func TestChain_Execute(t *testing.T) {
	endOfClip, err := Build([]string{"hold", "shuffle", "advance"})
	require.NoError(t, err)
	nextButton, err := Build([]string{"shuffle", "advance"})
	require.NoError(t, err)
	empty := NewChain()

	tests := []struct {
		name        string
		chain       *Chain
		in          Input
		wantCommand string
	}{
		{
			name:        "sequential end of clip advances",
			chain:       endOfClip,
			in:          Input{ClipIndex: 0, ClipCount: 2},
			wantCommand: "pt_step 1",
		},
		{
			name:        "hold wins over shuffle",
			chain:       endOfClip,
			in:          Input{Hold: true, Shuffle: true, ClipIndex: 0, ClipCount: 8},
			wantCommand: "seek 0 2",
		},
		{
			name:        "shuffle with unknown clip stops the chain",
			chain:       endOfClip,
			in:          Input{Shuffle: true, ClipIndex: -1, ClipCount: 8},
			wantCommand: "",
		},
		{
			name:        "next button ignores hold",
			chain:       nextButton,
			in:          Input{Hold: true, ClipIndex: 0, ClipCount: 8},
			wantCommand: "pt_step 1",
		},
		{
			name:        "empty chain does nothing",
			chain:       empty,
			in:          Input{ClipIndex: 0, ClipCount: 8},
			wantCommand: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Rand = newRand()

			result := tt.chain.Execute(tt.in)

			assert.True(t, result.Decided)
			assert.Equal(t, tt.wantCommand, result.Command)
		})
	}
}

func TestBuild(t *testing.T) {
	c, err := Build([]string{"advance", "hold"})
	require.NoError(t, err)
	assert.Equal(t, []string{"advance", "hold"}, c.Names())

	_, err = Build([]string{"hold", "rewind"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rewind")
}

func TestRegistry(t *testing.T) {
	registered := GetRegistered()

	for _, name := range []string{"hold", "shuffle", "advance"} {
		factory, ok := registered[name]
		require.True(t, ok, "policy %s not registered", name)
		p := factory()
		assert.Equal(t, name, p.Name())
		assert.NotEmpty(t, p.Description())
	}
}
