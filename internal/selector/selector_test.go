package selector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenizeCommandLine(t *testing.T) {
	argv, err := TokenizeCommandLine(`fuzzel --dmenu --prompt="pick: "`)
	require.NoError(t, err)
	require.Equal(t, []string{"fuzzel", "--dmenu", "--prompt=pick: "}, argv)
}

func TestTokenizeCommandLineUnterminatedQuote(t *testing.T) {
	_, err := TokenizeCommandLine(`fuzzel "unterminated`)
	require.Error(t, err)
}

func TestTokenizeCommandLineSingleQuotes(t *testing.T) {
	argv, err := TokenizeCommandLine(`rofi -dmenu -mesg 'pick an action'`)
	require.NoError(t, err)
	require.Equal(t, []string{"rofi", "-dmenu", "-mesg", "pick an action"}, argv)
}

func TestRunNoActionsCallsBackImmediately(t *testing.T) {
	sel := New(nil)
	var got Result
	done := make(chan struct{})
	sel.Run(Request{NotificationID: 5}, func(r Result) {
		got = r
		close(done)
	})
	<-done
	require.Equal(t, uint32(5), got.NotificationID)
	require.False(t, got.OK)
}

func TestRunSelectsMatchingLabel(t *testing.T) {
	sel := New(nil)
	req := Request{
		NotificationID: 7,
		Actions:        []Action{{ID: "open", Label: "Open"}, {ID: "later", Label: "Later"}},
		Cmdline:        `/bin/sh -c "cat > /dev/null; echo Open"`,
	}
	done := make(chan Result, 1)
	sel.Run(req, func(r Result) { done <- r })
	r := <-done
	require.True(t, r.OK)
	require.Equal(t, "open", r.ChosenID)
}
