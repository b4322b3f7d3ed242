// Package rpc builds the transport channel to a concept server and carries the
// Concept gRPC service definition.
package rpc

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"xdao.co/concept/clienterr"
)

// SecurityMode selects how a channel protects its traffic.
type SecurityMode int

const (
	ModePlainText SecurityMode = iota
	ModeTLS
)

func (m SecurityMode) String() string {
	switch m {
	case ModePlainText:
		return "plaintext"
	case ModeTLS:
		return "tls"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Options tune channel construction. The zero value uses grpc defaults.
type Options struct {
	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int

	// Dialer replaces the network dialer (in-process listeners in tests).
	Dialer func(ctx context.Context, addr string) (net.Conn, error)
}

// ChannelFactory produces a channel for a target address.
//
// ForAddress never performs network I/O: the connection is established on
// first use, so a returned channel does not imply the server is reachable.
type ChannelFactory interface {
	ForAddress(address string) (*Channel, error)
}

// PlainText produces unencrypted, unauthenticated channels.
type PlainText struct {
	Options Options
}

var _ ChannelFactory = PlainText{}

func (f PlainText) ForAddress(address string) (*Channel, error) {
	return newChannel(address, ModePlainText, "", insecure.NewCredentials(), f.Options)
}

// TLS produces encrypted channels that verify the server against a fixed
// trust context.
type TLS struct {
	rootCA  string
	creds   credentials.TransportCredentials
	Options Options
}

var _ ChannelFactory = (*TLS)(nil)

// NewTLS builds the trust context once. When rootCA is non-empty only the PEM
// certificates in that file are trusted; otherwise the platform trust store is
// used. Failures are configuration errors and are not retried.
func NewTLS(rootCA string, opts Options) (*TLS, error) {
	const op = "rpc.NewTLS"
	var pool *x509.CertPool
	if rootCA != "" {
		pem, err := os.ReadFile(rootCA)
		if err != nil {
			return nil, clienterr.Wrap(clienterr.KindConfiguration, op,
				fmt.Sprintf("read root CA %s", rootCA), err)
		}
		pool = x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, clienterr.New(clienterr.KindConfiguration, op,
				fmt.Sprintf("no PEM certificates found in root CA %s", rootCA))
		}
	} else {
		sys, err := x509.SystemCertPool()
		if err != nil {
			return nil, clienterr.Wrap(clienterr.KindConfiguration, op, "load platform trust store", err)
		}
		pool = sys
	}
	creds := credentials.NewTLS(&tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	})
	return &TLS{rootCA: rootCA, creds: creds, Options: opts}, nil
}

// RootCA returns the trust-anchor path, or "" for the platform trust store.
func (f *TLS) RootCA() string { return f.rootCA }

func (f *TLS) ForAddress(address string) (*Channel, error) {
	return newChannel(address, ModeTLS, f.rootCA, f.creds, f.Options)
}

// Channel is a long-lived connection to one server address. It is safe for
// concurrent use by any number of transactions; its security configuration is
// fixed at construction. Closing it invalidates every handle using it.
type Channel struct {
	address string
	mode    SecurityMode
	rootCA  string
	cc      *grpc.ClientConn
}

var _ grpc.ClientConnInterface = (*Channel)(nil)

func newChannel(address string, mode SecurityMode, rootCA string, creds credentials.TransportCredentials, opts Options) (*Channel, error) {
	const op = "rpc.ForAddress"
	if strings.TrimSpace(address) == "" {
		return nil, clienterr.New(clienterr.KindConfiguration, op, "empty server address")
	}
	dialOpts := []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}
	if opts.Dialer != nil {
		dialOpts = append(dialOpts, grpc.WithContextDialer(opts.Dialer))
	}
	cc, err := grpc.NewClient(address, dialOpts...)
	if err != nil {
		return nil, clienterr.Wrap(clienterr.KindConfiguration, op,
			fmt.Sprintf("%s channel to %s", mode, address), err)
	}
	log.Debug().Str("address", address).Stringer("mode", mode).Str("root_ca", rootCA).Msg("channel created")
	return &Channel{address: address, mode: mode, rootCA: rootCA, cc: cc}, nil
}

func (c *Channel) Address() string { return c.address }
func (c *Channel) Mode() SecurityMode { return c.mode }
func (c *Channel) RootCA() string { return c.rootCA }

func (c *Channel) Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, method, args, reply, opts...)
}

func (c *Channel) NewStream(ctx context.Context, desc *grpc.StreamDesc, method string, opts ...grpc.CallOption) (grpc.ClientStream, error) {
	return c.cc.NewStream(ctx, desc, method, opts...)
}

func (c *Channel) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}
