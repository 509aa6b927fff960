// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pluginsdk

import (
	"context"
	"errors"
	"net/rpc"

	hashiplug "github.com/hashicorp/go-plugin"
	"github.com/samber/oops"

	"github.com/holomush/propsuite/pkg/suite"
)

// Entry is the host's view of a dispensed binary plugin. s is served to
// the plugin for the duration of the call.
type Entry interface {
	MainEntry(ctx context.Context, s *suite.Suite, action string, self, in, out suite.Handle) (suite.Status, error)
}

// EntryPlugin implements go-plugin's net/rpc Plugin interface.
type EntryPlugin struct {
	// Impl is used by the plugin side only.
	Impl Handler
}

// Server returns the RPC receiver (called by plugin process).
func (p *EntryPlugin) Server(b *hashiplug.MuxBroker) (interface{}, error) {
	if p.Impl == nil {
		return nil, errors.New("pluginsdk: handler is nil")
	}
	return &EntryRPCServer{impl: p.Impl, broker: b}, nil
}

// Client returns an Entry (called by host process).
func (p *EntryPlugin) Client(b *hashiplug.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &EntryRPCClient{client: c, broker: b}, nil
}

// MainEntryArgs carries one main entry call. SuiteID is the broker stream
// the host serves its Suite on.
type MainEntryArgs struct {
	Action  string
	Self    suite.Handle
	In      suite.Handle
	Out     suite.Handle
	SuiteID uint32
}

// EntryRPCServer runs on the plugin side.
type EntryRPCServer struct {
	impl   Handler
	broker *hashiplug.MuxBroker
}

// MainEntry dials the host's Suite and runs the handler against it. A
// handler panic is reported as ErrFatal.
func (s *EntryRPCServer) MainEntry(args MainEntryArgs, reply *suite.Status) error {
	conn, err := s.broker.Dial(args.SuiteID)
	if err != nil {
		return oops.In("pluginsdk").Wrapf(err, "dial host suite")
	}
	client := rpc.NewClient(conn)
	defer client.Close()

	defer func() {
		if r := recover(); r != nil {
			*reply = suite.ErrFatal
		}
	}()
	*reply = s.impl.MainEntry(context.Background(), args.Action, NewRemoteSuite(client), args.Self, args.In, args.Out)
	return nil
}

// EntryRPCClient runs on the host side.
type EntryRPCClient struct {
	client *rpc.Client
	broker *hashiplug.MuxBroker
}

var _ Entry = (*EntryRPCClient)(nil)

// MainEntry serves s on a fresh broker stream and calls the plugin.
// Cancelling ctx abandons the call and reports ErrFatal.
func (c *EntryRPCClient) MainEntry(ctx context.Context, s *suite.Suite, action string, self, in, out suite.Handle) (suite.Status, error) {
	errb := oops.In("pluginsdk").With("action", action)
	if err := ctx.Err(); err != nil {
		return suite.ErrFatal, errb.Wrap(err)
	}

	id := c.broker.NextId()
	go c.broker.AcceptAndServe(id, &SuiteRPCServer{Suite: s})

	var st suite.Status
	call := c.client.Go("Plugin.MainEntry", MainEntryArgs{
		Action:  action,
		Self:    self,
		In:      in,
		Out:     out,
		SuiteID: id,
	}, &st, nil)

	select {
	case <-ctx.Done():
		return suite.ErrFatal, errb.Wrap(ctx.Err())
	case <-call.Done:
	}
	if call.Error != nil {
		return suite.ErrFatal, errb.Wrapf(call.Error, "main entry call")
	}
	return st, nil
}
