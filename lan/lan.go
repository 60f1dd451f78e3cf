// Package lan sends one-shot reminder datagrams to peers on the local
// network. Delivery is best effort: no acknowledgment, no retry, no
// ordering. It must never be mistaken for a reliable channel.
package lan

import (
	"context"
	"net"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

const sendTimeout = 2 * time.Second

// Peer is a notification target on the local network.
type Peer struct {
	Label string `json:"label,omitempty"`
	Host  string `json:"host"`
	Port  int    `json:"port"`
	Email string `json:"email,omitempty"`
}

// Addr returns the peer's host:port dial address.
func (p Peer) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

// Result reports the outcome of one datagram send. Err is a local send
// failure (e.g. an unresolvable address); Sent means the datagram left this
// host, not that anyone received it.
type Result struct {
	Peer   Peer   `json:"peer"`
	Sent   bool   `json:"sent"`
	Detail string `json:"detail,omitempty"`
}

// Broadcast sends message to every peer as one UDP datagram each and collects
// a per-peer result. A failure for one peer never stops the rest.
func Broadcast(ctx context.Context, peers []Peer, message string) []Result {
	results := make([]Result, 0, len(peers))
	payload := []byte(message)
	for _, peer := range peers {
		if err := sendOne(ctx, peer, payload); err != nil {
			log.WithFields(log.Fields{"peer": peer.Addr(), "error": err.Error()}).Debug("lan send failed")
			results = append(results, Result{Peer: peer, Detail: err.Error()})
			continue
		}
		results = append(results, Result{Peer: peer, Sent: true, Detail: "sent"})
	}
	return results
}

func sendOne(ctx context.Context, peer Peer, payload []byte) error {
	dialer := net.Dialer{Timeout: sendTimeout}
	conn, err := dialer.DialContext(ctx, "udp", peer.Addr())
	if err != nil {
		return err
	}
	defer conn.Close()
	_ = conn.SetWriteDeadline(time.Now().Add(sendTimeout))
	_, err = conn.Write(payload)
	return err
}
