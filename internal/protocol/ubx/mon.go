package ubx

import "strings"

// MonExtension is one 30 byte extended version string such as
// "PROTVER=23.01".
type MonExtension struct {
	Text string `ubx:"ch,len=30"`
}

// MonVer reports software and hardware versions. The number of extensions is
// implied by the payload length.
type MonVer struct {
	SWVersion  string         `ubx:"ch,len=30"`
	HWVersion  string         `ubx:"ch,len=10"`
	Extensions []MonExtension `ubx:"group,max=30"`
}

// Extension returns the value of the first "key=value" extension with the
// given key.
func (m *MonVer) Extension(key string) (string, bool) {
	for _, ext := range m.Extensions {
		k, v, ok := strings.Cut(ext.Text, "=")
		if ok && k == key {
			return v, true
		}
	}
	return "", false
}
