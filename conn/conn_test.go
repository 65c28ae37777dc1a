package conn

import (
	"net"
	"testing"
	"time"

	"srfc/dispatch"
	"srfc/message"
	"srfc/transport"
)

// pairedConnections dials a listening net.Listener and returns a
// connected *Connection wrapping each end, already InvokeDeferred'd.
func pairedConnections(t *testing.T) (client, server *Connection, cleanup func()) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen failed: %v", err)
	}

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	clientConn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("net.Dial failed: %v", err)
	}
	serverConn := <-accepted

	client = New()
	if err := client.ConnectStream(transport.Adopt(clientConn), false); err != nil {
		t.Fatalf("client ConnectStream failed: %v", err)
	}
	server = New()
	if err := server.ConnectStream(transport.Adopt(serverConn), false); err != nil {
		t.Fatalf("server ConnectStream failed: %v", err)
	}

	cleanup = func() {
		client.Dispose()
		server.Dispose()
		ln.Close()
	}
	return client, server, cleanup
}

func mustSend(t *testing.T, c *Connection, req *message.Request) *message.Response {
	t.Helper()
	ch, err := c.SendRequest(req)
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}
	select {
	case resp := <-ch:
		return resp
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for response")
		return nil
	}
}

func TestEchoRoundTrip(t *testing.T) {
	client, server, cleanup := pairedConnections(t)
	defer cleanup()

	server.AddMethod("Echo", func(params message.Params, payload []byte) ([]byte, message.Status) {
		return payload, message.StatusOK
	})

	resp := mustSend(t, client, message.NewRequest("Echo", nil, []byte("hello")))
	if resp.Status != message.StatusOK {
		t.Fatalf("expect StatusOK, got %v", resp.Status)
	}
	if string(resp.Payload) != "hello" {
		t.Fatalf("expect echoed payload, got %q", resp.Payload)
	}
}

func TestUnknownMethodReturnsStatus(t *testing.T) {
	client, _, cleanup := pairedConnections(t)
	defer cleanup()

	resp := mustSend(t, client, message.NewRequest("DoesNotExist", nil, nil))
	if resp.Status != message.StatusUnknownMethod {
		t.Fatalf("expect StatusUnknownMethod, got %v", resp.Status)
	}
}

func TestHandlerPanicRecoveredAsUnhandledException(t *testing.T) {
	client, server, cleanup := pairedConnections(t)
	defer cleanup()

	server.AddMethod("Boom", func(params message.Params, payload []byte) ([]byte, message.Status) {
		panic("boom")
	})

	resp := mustSend(t, client, message.NewRequest("Boom", nil, nil))
	if resp.Status != message.StatusUnhandledException {
		t.Fatalf("expect StatusUnhandledException, got %v", resp.Status)
	}
}

func TestBinaryPayloadSurvivesRoundTrip(t *testing.T) {
	client, server, cleanup := pairedConnections(t)
	defer cleanup()

	server.AddMethod("Blob", func(params message.Params, payload []byte) ([]byte, message.Status) {
		return payload, message.StatusOK
	})

	blob := make([]byte, 4096)
	for i := range blob {
		blob[i] = byte(i % 256)
	}

	resp := mustSend(t, client, message.NewRequest("Blob", nil, blob))
	if resp.Status != message.StatusOK {
		t.Fatalf("expect StatusOK, got %v", resp.Status)
	}
	if len(resp.Payload) != len(blob) {
		t.Fatalf("expect payload length %d, got %d", len(blob), len(resp.Payload))
	}
	for i := range blob {
		if resp.Payload[i] != blob[i] {
			t.Fatalf("payload byte %d mismatch: got %d, want %d", i, resp.Payload[i], blob[i])
		}
	}
}

func TestInterleavedRequestsEachGetTheirOwnResponse(t *testing.T) {
	client, server, cleanup := pairedConnections(t)
	defer cleanup()

	server.AddMethod("Slow", func(params message.Params, payload []byte) ([]byte, message.Status) {
		time.Sleep(50 * time.Millisecond)
		return payload, message.StatusOK
	})
	server.AddMethod("Fast", func(params message.Params, payload []byte) ([]byte, message.Status) {
		return payload, message.StatusOK
	})

	slowCh, err := client.SendRequest(message.NewRequest("Slow", nil, []byte("slow")))
	if err != nil {
		t.Fatalf("SendRequest(Slow) failed: %v", err)
	}
	fastCh, err := client.SendRequest(message.NewRequest("Fast", nil, []byte("fast")))
	if err != nil {
		t.Fatalf("SendRequest(Fast) failed: %v", err)
	}

	select {
	case resp := <-fastCh:
		if string(resp.Payload) != "fast" {
			t.Fatalf("expect fast response first, got %q", resp.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fast response")
	}

	select {
	case resp := <-slowCh:
		if string(resp.Payload) != "slow" {
			t.Fatalf("expect slow response eventually, got %q", resp.Payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for slow response")
	}
}

func TestShutdownReleasesPendingSenders(t *testing.T) {
	client, server, cleanup := pairedConnections(t)
	defer cleanup()

	server.AddMethod("Never", func(params message.Params, payload []byte) ([]byte, message.Status) {
		select {} // never responds
	})

	ch, err := client.SendRequest(message.NewRequest("Never", nil, nil))
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	if err := client.Shutdown(); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	select {
	case resp := <-ch:
		if resp.Status != message.StatusConnectionError {
			t.Fatalf("expect StatusConnectionError after shutdown, got %v", resp.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for shutdown to release the pending sender")
	}

	if client.IsConnected() {
		t.Fatalf("expect client to report disconnected after Shutdown")
	}
}

func TestSendRequestFailsWhenNotConnected(t *testing.T) {
	c := New()
	if _, err := c.SendRequest(message.NewRequest("Echo", nil, nil)); err == nil {
		t.Fatalf("expect an error sending on a never-connected Connection")
	}
}

func TestAddMethodReflectedThroughTable(t *testing.T) {
	c := New()
	if c.HasMethod("Echo") {
		t.Fatalf("expect a fresh Connection to have no methods registered")
	}
	c.AddMethod("Echo", func(params message.Params, payload []byte) ([]byte, message.Status) {
		return payload, message.StatusOK
	})
	if !c.HasMethod("Echo") {
		t.Fatalf("expect Echo to be registered after AddMethod")
	}
	if !c.RemoveMethod("Echo") {
		t.Fatalf("expect RemoveMethod to report true")
	}
}

func TestReplaceTableSwapsRegistry(t *testing.T) {
	c := New()
	table := dispatch.NewTable()
	table.Add("Ping", func(params message.Params, payload []byte) ([]byte, message.Status) {
		return payload, message.StatusOK
	})
	c.ReplaceTable(table)
	if !c.HasMethod("Ping") {
		t.Fatalf("expect ReplaceTable to install the given table")
	}
}
