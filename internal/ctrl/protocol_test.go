package ctrl

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	req := Request{Cmd: CmdDismissByID, ID: 42}
	require.NoError(t, WriteRequest(&buf, req))

	got, err := ReadRequest(&buf)
	require.NoError(t, err)
	require.Equal(t, req, got)
}

func TestReplyRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReply(&buf, ResultInvalidID))

	got, err := ReadReply(&buf)
	require.NoError(t, err)
	require.Equal(t, ResultInvalidID, got)
}

func TestListReplyRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	entries := []ListEntry{
		{ID: 1, Summary: "first"},
		{ID: 2, Summary: ""},
		{ID: 3, Summary: "third notification"},
	}
	require.NoError(t, WriteListReply(&buf, entries))

	got, err := ReadListReply(&buf)
	require.NoError(t, err)
	require.Equal(t, entries, got)
}

func TestListReplyEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteListReply(&buf, nil))

	got, err := ReadListReply(&buf)
	require.NoError(t, err)
	require.Empty(t, got)
}
