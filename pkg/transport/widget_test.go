package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdm-protocol/rdm-go/pkg/log"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/uid"
)

var responderUID = uid.New(0x4154, 0x00000042)

// fakeWidget plays the firmware side of the link.
type fakeWidget struct {
	received chan Frame
}

func startWidget(t *testing.T, handle func(Frame) []Frame, opts ...WidgetOption) (*Widget, *fakeWidget) {
	t.Helper()
	host, dev := net.Pipe()
	w := NewWidget(host, opts...)
	fake := &fakeWidget{received: make(chan Frame, 16)}

	go func() {
		r, wr := NewFrameReader(dev), NewFrameWriter(dev)
		for {
			f, err := r.ReadFrame()
			if err != nil {
				return
			}
			fake.received <- f
			for _, reply := range handle(f) {
				if err := wr.WriteFrame(reply.Label, reply.Data); err != nil {
					return
				}
			}
		}
	}()

	t.Cleanup(func() {
		_ = w.Close()
		_ = dev.Close()
	})
	return w, fake
}

func (f *fakeWidget) next(t *testing.T) Frame {
	t.Helper()
	select {
	case fr := <-f.received:
		return fr
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return Frame{}
	}
}

func pollReply(t *testing.T, w *Widget) []byte {
	t.Helper()
	var data []byte
	require.Eventually(t, func() bool {
		d, ok := w.Poll(0)
		data = d
		return ok
	}, time.Second, time.Millisecond)
	return data
}

func received(data []byte) Frame {
	return Frame{Label: LabelReceivedDMXPacket, Data: append([]byte{0}, data...)}
}

// muteAck answers req as the responder would. It runs on the fake
// widget goroutine, so a malformed request yields an empty reply.
func muteAck(req []byte) []byte {
	msg, err := rdm.Decode(req)
	if err != nil {
		return nil
	}
	ack := rdm.MuteAck(msg, responderUID, rdm.MuteResponse{})
	data, _ := ack.Encode()
	return data
}

func TestWidgetDiscoveryRequest(t *testing.T) {
	w, fake := startWidget(t, func(f Frame) []Frame {
		if f.Label != LabelSendRDMDiscoveryRequest {
			return nil
		}
		return []Frame{received(rdm.EncodeDiscoveryResponse(responderUID)), {Label: LabelRDMTimeout}}
	})

	branch := uid.Range{Lower: 0, Upper: 0x7FFFFFFFFFFF}
	require.NoError(t, w.SendDUB(0, branch))

	req := fake.next(t)
	assert.Equal(t, LabelSendRDMDiscoveryRequest, req.Label)
	msg, err := rdm.Decode(req.Data)
	require.NoError(t, err)
	assert.Equal(t, rdm.PIDDiscUniqueBranch, msg.PID)
	assert.Equal(t, DefaultSourceUID, msg.Source)
	got, err := rdm.BranchRange(msg)
	require.NoError(t, err)
	assert.Equal(t, branch, got)

	data := pollReply(t, w)
	assert.Equal(t, rdm.Result{Kind: rdm.Valid, UID: responderUID}, rdm.Classify(data))
}

func TestWidgetSwallowsTrailingTimeout(t *testing.T) {
	w, fake := startWidget(t, func(f Frame) []Frame {
		switch f.Label {
		case LabelSendRDMDiscoveryRequest:
			return []Frame{received(rdm.EncodeDiscoveryResponse(responderUID)), {Label: LabelRDMTimeout}}
		case LabelSendRDMPacketRequest:
			return []Frame{received(muteAck(f.Data))}
		}
		return nil
	})

	require.NoError(t, w.SendDUB(0, uid.Full()))
	fake.next(t)
	pollReply(t, w)

	require.NoError(t, w.SendMute(0, responderUID))
	req := fake.next(t)
	assert.Equal(t, LabelSendRDMPacketRequest, req.Label)

	// The RDM_TIMEOUT owed for the branch reply must not end the mute.
	data := pollReply(t, w)
	assert.True(t, rdm.IsMuteAck(data, responderUID))
}

func TestWidgetTimeout(t *testing.T) {
	w, fake := startWidget(t, func(Frame) []Frame {
		return []Frame{{Label: LabelRDMTimeout}}
	})

	require.NoError(t, w.SendUnMute(0, uid.Broadcast))
	req := fake.next(t)
	msg, err := rdm.Decode(req.Data)
	require.NoError(t, err)
	assert.Equal(t, rdm.PIDDiscUnMute, msg.PID)
	assert.True(t, msg.Destination.IsBroadcast())

	assert.Empty(t, pollReply(t, w))
}

func TestWidgetPollWithoutReply(t *testing.T) {
	w, _ := startWidget(t, func(Frame) []Frame { return nil })

	data, ok := w.Poll(0)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestWidgetSinglePort(t *testing.T) {
	w, _ := startWidget(t, func(Frame) []Frame { return nil })

	assert.ErrorIs(t, w.SendDUB(1, uid.Full()), ErrUnsupportedPort)
	assert.ErrorIs(t, w.SendMute(2, responderUID), ErrUnsupportedPort)
	_, ok := w.Poll(1)
	assert.False(t, ok)
}

func TestWidgetSerialNumber(t *testing.T) {
	w, _ := startWidget(t, func(f Frame) []Frame {
		if f.Label != LabelGetWidgetSerialNumber {
			return nil
		}
		return []Frame{
			{Label: LabelRDMTimeout},
			{Label: LabelGetWidgetSerialNumber, Data: []byte{0x78, 0x56, 0x34, 0x12}},
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sn, err := w.SerialNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), sn)
}

func TestWidgetSerialNumberTimeout(t *testing.T) {
	w, _ := startWidget(t, func(Frame) []Frame { return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := w.SerialNumber(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWidgetClose(t *testing.T) {
	w, _ := startWidget(t, func(Frame) []Frame { return nil })

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "second close")
	assert.ErrorIs(t, w.SendMute(0, responderUID), ErrWidgetClosed)
	assert.ErrorIs(t, w.Err(), ErrWidgetClosed)
}

func TestWidgetLinkLost(t *testing.T) {
	host, dev := net.Pipe()
	w := NewWidget(host)
	defer w.Close()

	require.NoError(t, dev.Close())
	require.Eventually(t, func() bool { return w.Err() != nil }, time.Second, time.Millisecond)
	assert.ErrorIs(t, w.SendDUB(0, uid.Full()), ErrWidgetClosed)
}

func TestWidgetCapture(t *testing.T) {
	logger := &capturingLogger{}
	source := uid.New(0x7a70, 0x00000001)
	w, fake := startWidget(t, func(f Frame) []Frame {
		return []Frame{received(muteAck(f.Data))}
	}, WithCapture(logger, "s1"), WithSourceUID(source))

	assert.Equal(t, source, w.SourceUID())
	require.NoError(t, w.SendMute(0, responderUID))
	fake.next(t)
	pollReply(t, w)

	var frames, messages []log.Event
	for _, ev := range logger.Events() {
		assert.Equal(t, "s1", ev.SessionID)
		switch {
		case ev.Frame != nil:
			frames = append(frames, ev)
		case ev.Message != nil:
			messages = append(messages, ev)
		}
	}
	require.Len(t, frames, 2)
	require.Len(t, messages, 2)

	out, in := messages[0], messages[1]
	assert.Equal(t, log.DirectionOut, out.Direction)
	assert.Equal(t, uint64(source), out.Message.Source)
	assert.Equal(t, uint16(rdm.PIDDiscMute), out.Message.PID)
	assert.Equal(t, log.DirectionIn, in.Direction)
	assert.Equal(t, uint64(responderUID), in.Message.Source)
	assert.Equal(t, uint8(rdm.DiscoveryCommandResponse), in.Message.CommandClass)
}
