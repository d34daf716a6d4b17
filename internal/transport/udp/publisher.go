// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"dtmf/internal/detect"
	"dtmf/internal/dsp"
	applog "dtmf/internal/log"
)

// LevelSource supplies the latest per-frequency tone levels and the
// algorithm that measured them.
type LevelSource interface {
	Levels(out *[dsp.ToneCount]float64) detect.Algorithm
}

// PacketSender is the write side used by the publisher.
type PacketSender interface {
	Send(data []byte) error
}

// UDPPublisher periodically packs the tone levels into a binary packet and
// sends it. It runs in a separate goroutine managed by Start and Stop.
type UDPPublisher struct {
	sender   PacketSender
	source   LevelSource
	interval time.Duration

	ticker   *time.Ticker
	doneChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	mu       sync.Mutex // Protects ticker and doneChan during Start/Stop.

	sequenceNum uint32

	// Pre-allocated so building a packet does not allocate.
	levels       [dsp.ToneCount]float64
	f32Buffer    [dsp.ToneCount]float32
	packetBuffer *bytes.Buffer
}

// NewUDPPublisher creates a publisher. An interval <= 0 defaults to 50ms.
func NewUDPPublisher(interval time.Duration, sender PacketSender, source LevelSource) (*UDPPublisher, error) {
	if sender == nil {
		return nil, errors.New("UDPPublisher: UDP sender cannot be nil")
	}
	if source == nil {
		return nil, errors.New("UDPPublisher: level source cannot be nil")
	}

	if interval <= 0 {
		interval = 50 * time.Millisecond
		applog.Warnf("UDPPublisher: Invalid interval provided, defaulting to %s", interval)
	}

	return &UDPPublisher{
		sender:       sender,
		source:       source,
		interval:     interval,
		packetBuffer: bytes.NewBuffer(make([]byte, 0, PacketSize)),
	}, nil
}

// Start begins the periodic publishing process. Calling Start on a running
// publisher is a no-op.
func (p *UDPPublisher) Start() {
	p.mu.Lock()
	if p.ticker != nil {
		p.mu.Unlock()
		applog.Warnf("UDPPublisher: Start called but already running.")
		return
	}

	p.ticker = time.NewTicker(p.interval)
	p.doneChan = make(chan struct{})
	p.stopOnce = sync.Once{}

	ticker := p.ticker
	doneChan := p.doneChan
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		applog.Debugf("UDPPublisher: Publisher goroutine started (Interval: %s)", p.interval)
		for {
			select {
			case <-ticker.C:
				if err := p.Publish(); err != nil {
					applog.Debugf("UDPPublisher: %v", err)
				}
			case <-doneChan:
				return
			}
		}
	}()
}

// Stop signals the publisher goroutine to terminate and waits for it.
// Calling Stop more than once is a no-op.
func (p *UDPPublisher) Stop() error {
	p.mu.Lock()
	if p.ticker == nil {
		p.mu.Unlock()
		return nil
	}

	p.stopOnce.Do(func() {
		close(p.doneChan)
		p.ticker.Stop()
		p.ticker = nil
	})
	p.mu.Unlock()

	p.wg.Wait()
	applog.Debugf("UDPPublisher: Publisher goroutine finished.")
	return nil
}

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Algorithm         | uint8          | 1            | 0 = FFT, 1 = Goertzel   |
| Level Count       | uint16         | 2            | Number of floats (8)    |
| Levels            | []float32      | N * 4        | Low group then high     |
+-----------------------------------------------------------------------------+
*/

const headerSize = 4 + 8 + 1 + 2

// PacketSize is the size in bytes of every level packet.
const PacketSize = headerSize + dsp.ToneCount*4

// Packet is the decoded form of a level packet.
type Packet struct {
	Sequence  uint32
	Timestamp int64
	Algorithm detect.Algorithm
	Levels    []float32
}

// Publish builds one packet from the current levels and sends it.
func (p *UDPPublisher) Publish() error {
	algo := p.source.Levels(&p.levels)
	for i, v := range p.levels {
		p.f32Buffer[i] = float32(v)
	}

	p.sequenceNum++
	p.packetBuffer.Reset()

	err := binary.Write(p.packetBuffer, binary.BigEndian, p.sequenceNum)
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, time.Now().UnixNano())
	}
	if err == nil {
		err = p.packetBuffer.WriteByte(byte(algo))
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, uint16(len(p.f32Buffer)))
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, p.f32Buffer[:])
	}
	if err != nil {
		return fmt.Errorf("failed to pack levels: %w", err)
	}

	if err := p.sender.Send(p.packetBuffer.Bytes()); err != nil {
		return err
	}
	applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequenceNum, p.packetBuffer.Len())
	return nil
}

// DecodePacket parses a packet produced by Publish.
func DecodePacket(data []byte) (Packet, error) {
	var pkt Packet
	r := bytes.NewReader(data)

	var algo uint8
	var count uint16
	err := binary.Read(r, binary.BigEndian, &pkt.Sequence)
	if err == nil {
		err = binary.Read(r, binary.BigEndian, &pkt.Timestamp)
	}
	if err == nil {
		err = binary.Read(r, binary.BigEndian, &algo)
	}
	if err == nil {
		err = binary.Read(r, binary.BigEndian, &count)
	}
	if err == nil {
		pkt.Levels = make([]float32, count)
		err = binary.Read(r, binary.BigEndian, pkt.Levels)
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Packet{}, fmt.Errorf("malformed level packet: %w", err)
	}
	pkt.Algorithm = detect.Algorithm(algo)
	return pkt, nil
}

// Close stops the publisher goroutine.
func (p *UDPPublisher) Close() error {
	return p.Stop()
}

var _ interface{ Close() error } = (*UDPPublisher)(nil)
