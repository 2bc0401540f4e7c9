package dev

import (
	"net"
	"testing"
)

func netListen() (net.Listener, error) {
	return net.Listen("tcp", "127.0.0.1:0")
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := netListen()
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}
