package transport

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// PortInfo describes one system serial port: its path, and an opaque
// hardware descriptor string the allowlist check scrapes for a
// "VID:PID=XXXX:YYYY" substring (see hwid.go). The descriptor format
// intentionally mirrors what libraries like pyserial/wjwwood's serial
// report from sysfs, since the allowlist rule in spec § 4.5 step 4 is
// defined against that exact shape.
type PortInfo struct {
	Port       string
	Descriptor string
}

var serialPortPattern = regexp.MustCompile(`^(ttyUSB\d+|ttyACM\d+|ttyS\d+|ttyAMA\d+|ttymxc\d+|ttyO\d+|ttySAC\d+|ttyTHS\d+)$`)

// ListPorts enumerates the system's communication-capable serial
// devices under /dev, skipping virtual terminals and pseudo-terminals,
// and attaches a hardware descriptor to each by walking its sysfs USB
// ancestry when one exists.
func ListPorts() ([]PortInfo, error) {
	entries, err := os.ReadDir("/dev")
	if err != nil {
		return nil, err
	}

	var ports []PortInfo
	for _, entry := range entries {
		name := entry.Name()
		if !serialPortPattern.MatchString(name) {
			continue
		}

		path := filepath.Join("/dev", name)
		if !isCharacterDevice(path) {
			continue
		}

		ports = append(ports, PortInfo{
			Port:       path,
			Descriptor: hardwareDescriptor(name),
		})
	}

	sort.Slice(ports, func(i, j int) bool { return ports[i].Port < ports[j].Port })
	return ports, nil
}

func isCharacterDevice(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// hardwareDescriptor walks the sysfs device tree for a tty name
// looking for a USB ancestor exposing idVendor/idProduct, and formats
// the result the way sysfs-backed serial libraries traditionally do:
// "USB VID:PID=vvvv:pppp SER=serial". Returns "" if name has no USB
// ancestor or its sysfs attributes are unreadable.
func hardwareDescriptor(name string) string {
	devicePath := filepath.Join("/sys/class/tty", name, "device")
	resolved, err := filepath.EvalSymlinks(devicePath)
	if err != nil {
		return ""
	}

	current := resolved
	for i := 0; i < 10; i++ {
		if vid, pid, ok := readUSBIDs(current); ok {
			descriptor := "USB VID:PID=" + vid + ":" + pid
			if serial := readSysfsAttr(current, "serial"); serial != "" {
				descriptor += " SER=" + serial
			}
			return descriptor + " "
		}

		parent := filepath.Dir(current)
		if parent == current || parent == "/" {
			break
		}
		current = parent
	}

	return ""
}

func readUSBIDs(path string) (vid, pid string, ok bool) {
	vid = readSysfsAttr(path, "idVendor")
	pid = readSysfsAttr(path, "idProduct")
	if vid == "" || pid == "" {
		return "", "", false
	}
	return strings.ToLower(vid), strings.ToLower(pid), true
}

func readSysfsAttr(dir, attr string) string {
	clean := filepath.Clean(filepath.Join(dir, attr))
	if !strings.HasPrefix(clean, "/sys/") {
		return ""
	}
	data, err := os.ReadFile(clean) // #nosec G304 -- clean is validated to be under /sys/
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
