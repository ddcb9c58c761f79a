// Package ctrl implements the control socket protocol (spec §6): a local
// unix-domain socket accepting fixed-width request/reply frames.
package ctrl

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Command is the one-byte request opcode (spec §6, ported from
// original_source/notification/fnott/ctrl-protocol.h's ctrl_command enum,
// narrowed from C's native int width to the wire's explicit u8).
type Command uint8

const (
	CmdQuit Command = iota
	CmdList
	CmdPause
	CmdUnpause
	CmdDismissByID
	CmdDismissAll
	CmdActionsByID
	CmdDismissWithDefaultActionByID
)

// Result is the one-byte reply code (spec §6).
type Result uint8

const (
	ResultOK Result = iota
	ResultInvalidID
	ResultNoActions
	ResultError
)

// Request is the fixed-width {cmd:u8, id:u32} frame (spec §6).
type Request struct {
	Cmd Command
	ID  uint32
}

// ReadRequest reads one fixed-width request frame.
func ReadRequest(r io.Reader) (Request, error) {
	var buf [5]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Request{}, err
	}
	return Request{
		Cmd: Command(buf[0]),
		ID:  binary.LittleEndian.Uint32(buf[1:5]),
	}, nil
}

// WriteRequest writes one fixed-width request frame (used by the
// fnottctl client).
func WriteRequest(w io.Writer, req Request) error {
	var buf [5]byte
	buf[0] = byte(req.Cmd)
	binary.LittleEndian.PutUint32(buf[1:5], req.ID)
	_, err := w.Write(buf[:])
	return err
}

// WriteReply writes the fixed-width {result:u8} frame (spec §6).
func WriteReply(w io.Writer, result Result) error {
	_, err := w.Write([]byte{byte(result)})
	return err
}

// ReadReply reads the fixed-width {result:u8} frame.
func ReadReply(r io.Reader) (Result, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return Result(buf[0]), nil
}

// ListEntry is one row of List's reply body: {u32 id, u32 summary_len,
// bytes summary[summary_len]} (spec §6), non-null-terminated.
type ListEntry struct {
	ID      uint32
	Summary string
}

// WriteListReply writes List's success body: u64 count, then count entries
// (spec §6). Called only after a ResultOK reply has already been written.
func WriteListReply(w io.Writer, entries []ListEntry) error {
	var countBuf [8]byte
	binary.LittleEndian.PutUint64(countBuf[:], uint64(len(entries)))
	if _, err := w.Write(countBuf[:]); err != nil {
		return err
	}
	for _, e := range entries {
		var head [8]byte
		binary.LittleEndian.PutUint32(head[0:4], e.ID)
		binary.LittleEndian.PutUint32(head[4:8], uint32(len(e.Summary)))
		if _, err := w.Write(head[:]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, e.Summary); err != nil {
			return err
		}
	}
	return nil
}

// ReadListReply reads List's success body written by WriteListReply.
func ReadListReply(r io.Reader) ([]ListEntry, error) {
	var countBuf [8]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, err
	}
	count := binary.LittleEndian.Uint64(countBuf[:])

	entries := make([]ListEntry, 0, count)
	for i := uint64(0); i < count; i++ {
		var head [8]byte
		if _, err := io.ReadFull(r, head[:]); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		id := binary.LittleEndian.Uint32(head[0:4])
		n := binary.LittleEndian.Uint32(head[4:8])
		summary := make([]byte, n)
		if _, err := io.ReadFull(r, summary); err != nil {
			return nil, fmt.Errorf("entry %d summary: %w", i, err)
		}
		entries = append(entries, ListEntry{ID: id, Summary: string(summary)})
	}
	return entries, nil
}
