package ctrl

import "net"

// Client is a thin wrapper over one control-socket round trip, used by
// fnottctl.
type Client struct {
	path string
}

func NewClient(path string) *Client {
	if path == "" {
		path = SocketPath()
	}
	return &Client{path: path}
}

// Do performs one request/reply exchange, returning any List body
// (nil for non-List commands).
func (c *Client) Do(req Request) (Result, []ListEntry, error) {
	conn, err := net.Dial("unix", c.path)
	if err != nil {
		return 0, nil, err
	}
	defer conn.Close()

	if err := WriteRequest(conn, req); err != nil {
		return 0, nil, err
	}
	result, err := ReadReply(conn)
	if err != nil {
		return 0, nil, err
	}
	if req.Cmd == CmdList && result == ResultOK {
		entries, err := ReadListReply(conn)
		if err != nil {
			return result, nil, err
		}
		return result, entries, nil
	}
	return result, nil, nil
}
