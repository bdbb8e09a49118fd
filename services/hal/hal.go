package hal

import (
	"context"

	"hfdrivers-go/bus"
	"hfdrivers-go/errcode"
	"hfdrivers-go/services/hal/config"
	"hfdrivers-go/types"
	"hfdrivers-go/x/timex"
)

// Topic helpers.

func topicConfigHAL() bus.Topic { return bus.T("config", "hal") }
func topicHALState() bus.Topic  { return bus.T("hal", "state") }

// hal/cap/<domain>/<kind>/<name>/...
func capBase(domain, kind, name string) bus.Topic { return bus.T("hal", "cap", domain, kind, name) }
func capInfo(domain, kind, name string) bus.Topic { return capBase(domain, kind, name).Append("info") }

// hal/cap/+/+/+/control/+
func ctrlWildcard() bus.Topic {
	return bus.T("hal", "cap", bus.Wildcard, bus.Wildcard, bus.Wildcard, "control", bus.Wildcard)
}

type capKey struct {
	domain string
	kind   string
	name   string
}

// HAL is the service instance; run it with Run.
type HAL struct {
	conn *bus.Connection
	res  Resources

	dev      map[string]Device // devID -> device
	capIndex map[capKey]string // capability -> devID
}

func NewHAL(conn *bus.Connection, res Resources) *HAL {
	return &HAL{
		conn:     conn,
		res:      res,
		dev:      map[string]Device{},
		capIndex: map[capKey]string{},
	}
}

// Run processes configuration and control messages until ctx is cancelled.
// All device access happens on this goroutine.
func (h *HAL) Run(ctx context.Context) {
	cfgSub := h.conn.Subscribe(topicConfigHAL())
	ctrlSub := h.conn.Subscribe(ctrlWildcard())
	defer h.conn.Unsubscribe(cfgSub)
	defer h.conn.Unsubscribe(ctrlSub)

	h.pubState("idle", "awaiting_config")

	ready := false
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.pubState("stopped", "context_cancelled")
			return
		case msg := <-cfgSub.Channel():
			cfg, code := As[config.HALConfig](msg.Payload)
			if code != "" {
				h.pubState("error", "config_decode_failed")
				continue
			}
			h.applyConfig(ctx, cfg)
			if !ready {
				ready = true
				h.pubState("ready", "configured")
			}
		case msg := <-ctrlSub.Channel():
			if !ready {
				h.replyErr(msg, errcode.HALNotReady)
				continue
			}
			h.handleControl(msg)
		}
	}
}

// applyConfig is additive and idempotent for already-built devices.
func (h *HAL) applyConfig(ctx context.Context, cfg config.HALConfig) {
	for i := range cfg.Devices {
		dc := cfg.Devices[i]
		if _, exists := h.dev[dc.ID]; exists {
			continue
		}
		b, ok := lookupBuilder(dc.Type)
		if !ok {
			continue
		}
		in := BuilderInput{ID: dc.ID, Type: dc.Type, Params: dc.Params, Res: h.res}
		in.BusRef.Type = dc.BusRef.Type
		in.BusRef.ID = dc.BusRef.ID
		dev, err := b.Build(ctx, in)
		if err != nil {
			continue
		}
		if err := dev.Init(ctx); err != nil {
			_ = dev.Close()
			continue
		}
		h.dev[dc.ID] = dev
		for _, cap := range dev.Capabilities() {
			key := capKey{domain: cap.Domain, kind: string(cap.Kind), name: cap.Name}
			h.capIndex[key] = dc.ID
			h.conn.Publish(&bus.Message{
				Topic:    capInfo(cap.Domain, string(cap.Kind), cap.Name),
				Payload:  cap.Info,
				Retained: true,
			})
		}
	}
}

// handleControl dispatches hal/cap/<domain>/<kind>/<name>/control/<method>.
func (h *HAL) handleControl(m *bus.Message) {
	if len(m.Topic) != 7 {
		h.replyErr(m, errcode.InvalidPayload)
		return
	}
	key := capKey{domain: m.Topic[2], kind: m.Topic[3], name: m.Topic[4]}
	method := m.Topic[6]

	devID, ok := h.capIndex[key]
	if !ok {
		h.replyErr(m, errcode.UnknownCapability)
		return
	}
	dev := h.dev[devID]

	result, err := dev.Control(types.Kind(key.kind), method, m.Payload)
	if err != nil {
		h.replyErr(m, errcode.Of(err))
		return
	}
	h.replyOK(m, result)
}

func (h *HAL) closeAll() {
	for id, dev := range h.dev {
		_ = dev.Close()
		delete(h.dev, id)
	}
}

// ---- replies & state ----

func (h *HAL) replyOK(m *bus.Message, result any) {
	if !m.CanReply() {
		return
	}
	if result == nil {
		result = types.OKReply{OK: true}
	}
	h.conn.Reply(m, result, false)
}

func (h *HAL) replyErr(m *bus.Message, code errcode.Code) {
	if !m.CanReply() {
		return
	}
	if code == "" {
		code = errcode.Error
	}
	h.conn.Reply(m, types.ErrorReply{OK: false, Error: string(code)}, false)
}

func (h *HAL) pubState(level, status string) {
	h.conn.Publish(&bus.Message{
		Topic:    topicHALState(),
		Payload:  types.HALState{Level: level, Status: status, TS: timex.NowMs()},
		Retained: true,
	})
}
