package transport

import "testing"

func TestSerialPortPatternMatches(t *testing.T) {
	matches := []string{"ttyUSB0", "ttyUSB12", "ttyACM0", "ttyS0", "ttyAMA1", "ttymxc2", "ttyO0", "ttySAC1", "ttyTHS0"}
	for _, name := range matches {
		if !serialPortPattern.MatchString(name) {
			t.Errorf("expected %q to match the serial port pattern", name)
		}
	}
}

func TestSerialPortPatternRejects(t *testing.T) {
	rejects := []string{"tty0", "tty", "ttyUSB", "console", "pts0", "ttyprintk"}
	for _, name := range rejects {
		if serialPortPattern.MatchString(name) {
			t.Errorf("expected %q not to match the serial port pattern", name)
		}
	}
}

func TestReadSysfsAttrRejectsOutsideSys(t *testing.T) {
	if got := readSysfsAttr("/etc", "passwd"); got != "" {
		t.Errorf("readSysfsAttr escaped /sys/: got %q", got)
	}
}
