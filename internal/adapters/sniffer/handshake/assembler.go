package handshake

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/hashlock/wpacrack/internal/adapters/sniffer/ie"
	"github.com/hashlock/wpacrack/internal/core/domain"
	"github.com/hashlock/wpacrack/internal/telemetry"
)

// State is a session's position in the 4-way handshake state machine.
type State int

const (
	StateIdle State = iota
	StateHaveM1
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHaveM1:
		return "have_m1"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

const sessionTimeout = 60 * time.Second

// micOffset is where the 16-byte MIC field starts within the full EAPOL
// frame (4-byte 802.1X header + 77 bytes of EAPOL-Key descriptor fields
// preceding the MIC: DescType(1)+KeyInfo(2)+KeyLen(2)+Replay(8)+Nonce(32)+
// KeyIV(16)+KeyRSC(8)+KeyID(8) = 77).
const micOffset = 4 + 77

type sessionKey struct {
	bssid   string
	station string
}

type session struct {
	state         State
	apMac         [6]byte
	clientMac     [6]byte
	anonce        [32]byte
	replayCounter uint64
	keyVersion    domain.KeyVersion
	lastUpdate    time.Time
}

// Assembler runs the M1/M2 pairing state machine described in §4.C: a
// session starts IDLE, moves to HAVE_M1 on a valid Message 1, and completes
// to DONE the moment a Message 2 arrives whose replay counter equals the
// stored M1's or is exactly one greater (some supplicants increment it
// between M1 and M2), at which point a domain.Handshake is emitted. M3 is
// observed only to
// recover a missed M1's ANonce and M4 is ignored; neither ever completes a
// session, since only M2 carries the SNonce and MIC needed for offline cracking.
//
// Grounded on the BSSID/station addressing and ToDS/FromDS logic of
// internal/adapters/sniffer/handshake/handshake_manager.go, tightened from
// that file's looser "any M2 plus any of M1/M3" completion rule into an
// explicit three-state machine.
type Assembler struct {
	mu        sync.Mutex
	sessions  map[sessionKey]*session
	ssidCache map[string]string // bssid -> SSID, learned from beacons
}

// NewAssembler returns an empty assembler.
func NewAssembler() *Assembler {
	return &Assembler{
		sessions:  make(map[sessionKey]*session),
		ssidCache: make(map[string]string),
	}
}

// Ingest feeds one captured frame into the state machine. It returns a
// completed handshake the instant a session reaches DONE; the caller owns
// that handshake and the assembler forgets the session afterwards.
func (a *Assembler) Ingest(packet gopacket.Packet) (*domain.Handshake, bool, error) {
	dot11Layer := packet.Layer(layers.LayerTypeDot11)
	if dot11Layer == nil {
		return nil, false, nil
	}
	dot11, ok := dot11Layer.(*layers.Dot11)
	if !ok {
		return nil, false, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if dot11.Type == layers.Dot11TypeMgmtBeacon {
		a.learnSSID(packet, dot11)
		return nil, false, nil
	}

	if packet.Layer(layers.LayerTypeEAPOL) == nil {
		return nil, false, nil
	}
	return a.ingestEAPOL(packet, dot11)
}

func (a *Assembler) learnSSID(packet gopacket.Packet, dot11 *layers.Dot11) {
	beaconLayer := packet.Layer(layers.LayerTypeDot11MgmtBeacon)
	if beaconLayer == nil {
		return
	}
	ssid := ie.ParseSSID(beaconLayer.LayerPayload())
	if ssid == "" || ssid == "<HIDDEN>" {
		return
	}
	a.ssidCache[dot11.Address3.String()] = ssid
}

func (a *Assembler) ingestEAPOL(packet gopacket.Packet, dot11 *layers.Dot11) (*domain.Handshake, bool, error) {
	bssid, station, ok := addressingFor(dot11)
	if !ok {
		return nil, false, nil
	}

	eapolFrame, err := ParseEAPOLKey(packet)
	if err != nil {
		return nil, false, nil // not a usable EAPOL-Key frame; not an error condition
	}
	msgNum := eapolFrame.DetermineMessageNumber()
	if msgNum == 0 {
		return nil, false, nil
	}
	if eapolFrame.HasMIC && eapolFrame.IsMICZero() {
		return nil, false, nil
	}

	key := sessionKey{bssid: bssid, station: station}
	sess, exists := a.sessions[key]

	switch msgNum {
	case 1:
		sess = &session{
			state:         StateHaveM1,
			replayCounter: eapolFrame.ReplayCounter,
			keyVersion:    domain.KeyVersion(eapolFrame.Version),
			lastUpdate:    time.Now(),
		}
		copy(sess.anonce[:], eapolFrame.Nonce)
		setMacs(sess, dot11, bssid, station)
		a.sessions[key] = sess
		return nil, false, nil

	case 3:
		// A Message 3 also carries the ANonce; use it to recover a session
		// whose M1 was missed, but never transition straight to DONE from
		// it alone (spec: only M2 supplies the SNonce/MIC pair needed).
		if !exists || sess.state == StateIdle {
			sess = &session{
				state:         StateHaveM1,
				replayCounter: eapolFrame.ReplayCounter - 1,
				keyVersion:    domain.KeyVersion(eapolFrame.Version),
				lastUpdate:    time.Now(),
			}
			copy(sess.anonce[:], eapolFrame.Nonce)
			setMacs(sess, dot11, bssid, station)
			a.sessions[key] = sess
		}
		return nil, false, nil

	case 2:
		if !exists || sess.state != StateHaveM1 {
			return nil, false, nil
		}
		rc := eapolFrame.ReplayCounter
		if rc != sess.replayCounter && rc != sess.replayCounter+1 {
			return nil, false, nil
		}

		hs, err := a.completeFromM2(packet, sess, bssid, eapolFrame)
		delete(a.sessions, key)
		if err != nil {
			return nil, false, err
		}
		telemetry.HandshakesAssembled.WithLabelValues(bssid).Inc()
		return hs, true, nil

	default: // M4: irrelevant to cracking, nothing to update
		return nil, false, nil
	}
}

func (a *Assembler) completeFromM2(packet gopacket.Packet, sess *session, bssid string, frame *EAPOLKeyFrame) (*domain.Handshake, error) {
	eapolLayer := packet.Layer(layers.LayerTypeEAPOL)
	full := append(append([]byte{}, eapolLayer.LayerContents()...), eapolLayer.LayerPayload()...)

	zeroed, err := domain.ZeroMIC(full, micOffset)
	if err != nil {
		return nil, fmt.Errorf("%w: zeroing MIC in M2 frame: %v", domain.ErrInputInvalid, err)
	}

	ssid := a.ssidCache[bssid]
	if ssid == "" {
		ssid = "unknown"
	}

	hs := &domain.Handshake{
		SSID:       []byte(ssid),
		APMac:      sess.apMac,
		ClientMac:  sess.clientMac,
		ANonce:     sess.anonce,
		KeyVersion: sess.keyVersion,
		EAPOLFrame: zeroed,
	}
	copy(hs.SNonce[:], frame.Nonce)
	copy(hs.MIC[:], frame.MIC)
	return hs, nil
}

func setMacs(sess *session, dot11 *layers.Dot11, bssid, station string) {
	apMac, clientMac := macsFor(dot11, bssid, station)
	sess.apMac = apMac
	sess.clientMac = clientMac
}

// macsFor resolves which Dot11 address field is the AP and which is the
// station, independent of uplink/downlink direction.
func macsFor(dot11 *layers.Dot11, bssid, station string) (ap, client [6]byte) {
	for _, addr := range []struct {
		mac []byte
		str string
	}{
		{dot11.Address1, dot11.Address1.String()},
		{dot11.Address2, dot11.Address2.String()},
		{dot11.Address3, dot11.Address3.String()},
	} {
		if addr.str == bssid {
			copy(ap[:], addr.mac)
		}
		if addr.str == station {
			copy(client[:], addr.mac)
		}
	}
	return ap, client
}

// addressingFor derives (bssid, station) from the Dot11 ToDS/FromDS flags,
// the same disambiguation the teacher's handshake manager performs.
func addressingFor(dot11 *layers.Dot11) (bssid, station string, ok bool) {
	toDS := dot11.Flags.ToDS()
	fromDS := dot11.Flags.FromDS()

	switch {
	case !toDS && !fromDS:
		bssid = dot11.Address3.String()
		if dot11.Address2.String() == bssid {
			station = dot11.Address1.String()
		} else {
			station = dot11.Address2.String()
		}
	case !toDS && fromDS:
		bssid = dot11.Address2.String()
		station = dot11.Address1.String()
	case toDS && !fromDS:
		bssid = dot11.Address1.String()
		station = dot11.Address2.String()
	default:
		return "", "", false
	}
	return bssid, station, true
}

// ExpireStale drops sessions that haven't advanced within sessionTimeout,
// mirroring the teacher's periodic CleanupSessions sweep.
func (a *Assembler) ExpireStale() {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := time.Now()
	for k, s := range a.sessions {
		if now.Sub(s.lastUpdate) > sessionTimeout {
			delete(a.sessions, k)
		}
	}
}
