// Package heartbeat prints a periodic liveness line with uptime and the
// current link phase. The interval follows "config/heartbeat".
package heartbeat

import (
	"context"
	"time"

	"plantcode-go/bus"
	"plantcode-go/types"
)

var (
	topicConfigHeartbeat = bus.Topic{"config", "heartbeat"}
	topicStateLink       = bus.Topic{"state", "link"}
)

type Service struct{}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)
	linkSub := conn.Subscribe(topicStateLink)
	defer conn.Unsubscribe(linkSub)

	started := time.Now()
	phase := types.LinkUnprovisioned

	tick := time.NewTicker(5 * time.Second)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			println("Info: heartbeat service stopping")
			return
		case <-tick.C:
			up := int64(time.Since(started) / time.Second)
			println("Info: heartbeat: up", up, "s, link", string(phase))
		case msg := <-linkSub.Channel():
			if st, ok := msg.Payload.(types.LinkState); ok {
				phase = st.Phase
			}
		case msg := <-cfgSub.Channel():
			cfg, ok := msg.Payload.(types.HeartbeatConfig)
			if !ok || cfg.IntervalS == 0 {
				continue
			}
			tick.Reset(time.Duration(cfg.IntervalS) * time.Second)
			println("Info: heartbeat interval set to", cfg.IntervalS, "seconds")
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
