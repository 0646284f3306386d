// Copyright 2025 The reqguard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package wiretest serves raw HTTP/1.1 requests to a handler through a real
// http.Server without opening a socket. It lets tests exercise how header
// quirks on the wire reach the request guard.
package wiretest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
)

// Listener hands a single in-memory connection to an http.Server.
type Listener struct {
	closeOnce sync.Once
	conns     chan net.Conn
	server    net.Conn
	client    net.Conn
}

// NewListener returns a Listener whose only connection is ready to Accept.
func NewListener() *Listener {
	server, client := net.Pipe()
	conns := make(chan net.Conn, 1)
	conns <- server
	return &Listener{conns: conns, server: server, client: client}
}

// Accept returns the server side of the connection once, then blocks until
// the listener is closed.
func (l *Listener) Accept() (net.Conn, error) {
	c, ok := <-l.conns
	if !ok {
		return nil, errors.New("listener closed")
	}
	return c, nil
}

// Close closes both ends of the connection.
func (l *Listener) Close() error {
	l.closeOnce.Do(func() { close(l.conns) })
	return errors.Join(l.server.Close(), l.client.Close())
}

// Addr returns the client side address.
func (l *Listener) Addr() net.Addr {
	return l.client.LocalAddr()
}

// Response is a parsed response with its body read.
type Response struct {
	*http.Response
	Body []byte
}

// Serve writes raw to a server running h and parses the response. raw must be
// a complete HTTP/1.1 request, including Content-Length for bodies.
func Serve(ctx context.Context, h http.Handler, raw []byte) (*Response, error) {
	l := NewListener()
	defer l.Close()

	srv := &http.Server{Handler: h}
	go srv.Serve(l)
	defer srv.Close()

	if n, err := l.client.Write(raw); err != nil {
		return nil, err
	} else if n != len(raw) {
		return nil, fmt.Errorf("wrote %d of %d request bytes", n, len(raw))
	}

	resp, err := http.ReadResponse(bufio.NewReader(l.client), nil)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return &Response{Response: resp, Body: body}, srv.Shutdown(ctx)
}
