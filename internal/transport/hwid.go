package transport

import "strings"

const vidPidKey = "VID:PID="

// ExtractHardwareID pulls the "VVVV:PPPP" value out of a hardware
// descriptor string by searching for the literal key "VID:PID=" and
// taking the run of characters up to the next space, exactly as
// spec § 4.5 step 4 and § 9 describe. This is a compatibility shim:
// it depends entirely on the transport reporting descriptors in this
// sysfs-derived textual shape rather than a structured
// {vendor_id, product_id, serial} value — spec § 9 flags this as the
// thing a cleaner design would replace, and explicitly asks that the
// shim be preserved rather than silently upgraded.
func ExtractHardwareID(descriptor string) (string, bool) {
	keyPos := strings.Index(descriptor, vidPidKey)
	if keyPos < 0 {
		return "", false
	}

	valueStart := keyPos + len(vidPidKey)
	rest := descriptor[valueStart:]

	end := strings.IndexByte(rest, ' ')
	if end < 0 {
		return "", false
	}

	return rest[:end], true
}
